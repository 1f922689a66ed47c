package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"library-admin/internal/config"
	"library-admin/internal/schemas"
)

func TestFineNoticeSkippedOutsideProduction(t *testing.T) {
	mailMgr := NewMailManager(config.Mail{Domain: "mail.example.org", APIKey: "key", From: "Library <library@example.org>"}, false)

	err := mailMgr.SendFineNotice(&schemas.FineNotice{
		Email:      "sam@example.org",
		MemberName: "Sam",
		BookTitle:  "Dune",
		Amount:     2.5,
		Status:     schemas.FineStatusUnpaid,
	})
	assert.NoError(t, err)
}
