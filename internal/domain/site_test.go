package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSite() Site {
	return Site{
		Name:          "Promo News",
		URL:           "https://example.com",
		IntervalHours: 6,
		SelectorTitle: ".title",
		SelectorImage: ".title img",
	}
}

func TestSite_Validate(t *testing.T) {
	s := validSite()
	assert.NoError(t, s.Validate())

	s = validSite()
	s.Name = "  "
	assert.Error(t, s.Validate())

	s = validSite()
	s.URL = ""
	assert.Error(t, s.Validate())

	s = validSite()
	s.SelectorTitle = ""
	assert.Error(t, s.Validate())

	s = validSite()
	s.SelectorImage = ""
	assert.Error(t, s.Validate())
}

func TestSite_Validate_IntervalBounds(t *testing.T) {
	s := validSite()

	s.IntervalHours = MinIntervalHours
	assert.NoError(t, s.Validate())

	s.IntervalHours = MaxIntervalHours
	assert.NoError(t, s.Validate())

	s.IntervalHours = 0.25
	assert.Error(t, s.Validate())

	s.IntervalHours = 200
	assert.Error(t, s.Validate())

	s.IntervalHours = 0
	assert.Error(t, s.Validate())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsValidation(&ValidationError{Field: "name", Message: "required"}))
	assert.True(t, IsNotFound(&NotFoundError{Entity: "site", ID: 1}))
	assert.False(t, IsValidation(&NotFoundError{Entity: "site", ID: 1}))
	assert.False(t, IsNotFound(ErrCrawlInFlight))
}
