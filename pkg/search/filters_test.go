package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexquery/lexquery/pkg/types"
)

func TestTranslateEmptyFiltersYieldsNoPredicates(t *testing.T) {
	vp, gp, err := Filters{}.Translate()
	require.NoError(t, err)
	assert.Nil(t, vp)
	assert.Nil(t, gp)
}

func TestTranslateBuildsBothPredicates(t *testing.T) {
	vp, gp, err := Filters{
		Court:     "Bombay High Court",
		StartDate: "2015-01-01",
		EndDate:   "2020-12-31",
	}.Translate()
	require.NoError(t, err)

	require.NotNil(t, vp)
	assert.Equal(t, "Bombay High Court", vp.Court)
	assert.Equal(t, "2015-01-01", vp.DateFrom)
	assert.Equal(t, "2020-12-31", vp.DateTo)

	require.NotNil(t, gp)
	assert.Equal(t, "Bombay High Court", gp.Court)
	assert.Equal(t, "2015-01-01", gp.DateFrom)
	assert.Equal(t, "2020-12-31", gp.DateTo)
	assert.Empty(t, gp.Text)
}

func TestTranslateCourtOnly(t *testing.T) {
	vp, gp, err := Filters{Court: "Supreme Court"}.Translate()
	require.NoError(t, err)
	require.NotNil(t, vp)
	require.NotNil(t, gp)
	assert.Empty(t, vp.DateFrom)
	assert.Empty(t, gp.DateTo)
}

func TestTranslateRejectsMalformedDates(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		field   string
	}{
		{"garbage start date", Filters{StartDate: "not-a-date"}, "start_date"},
		{"garbage end date", Filters{EndDate: "01/05/2020"}, "end_date"},
		{"non-canonical form", Filters{StartDate: "2020-1-5"}, "start_date"},
		{"impossible day", Filters{StartDate: "2020-02-30"}, "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.filters.Translate()
			require.Error(t, err)

			var verr *types.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestTranslateRejectsInvertedRange(t *testing.T) {
	_, _, err := Filters{
		StartDate: "2020-05-01",
		EndDate:   "2019-01-01",
	}.Translate()
	require.Error(t, err)

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestTranslateAcceptsEqualBounds(t *testing.T) {
	_, _, err := Filters{
		StartDate: "2020-05-01",
		EndDate:   "2020-05-01",
	}.Translate()
	require.NoError(t, err)
}
