package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrench(t *testing.T) *Formatter {
	t.Helper()
	f, err := New("fr-FR", "EUR", time.UTC)
	require.NoError(t, err)
	return f
}

func TestFormatter_FormatDate(t *testing.T) {
	f := newFrench(t)

	tests := []struct {
		name  string
		input string
		opts  DateOptions
		want  string
	}{
		{"default numeric", "2026-10-17", DateOptions{}, "17/10/2026"},
		{"single digit day is padded", "2026-03-05", DateOptions{}, "05/03/2026"},
		{"datetime input", "2026-10-17T14:05:09Z", DateOptions{}, "17/10/2026"},
		{
			"long form",
			"2026-10-17",
			DateOptions{Weekday: Long, Year: Numeric, Month: Long, Day: Numeric},
			"samedi 17 octobre 2026",
		},
		{"month and year", "2026-02-01", DateOptions{Month: Long, Year: Numeric}, "février 2026"},
		{"short month", "2026-07-14", DateOptions{Day: Numeric, Month: Short}, "14 juil."},
		{"two digit year", "2026-10-17", DateOptions{Day: TwoDig, Month: TwoDig, Year: TwoDig}, "17/10/26"},
		{"short weekday numeric", "2026-10-17", DateOptions{Weekday: Short, Day: Numeric, Month: Numeric, Year: Numeric}, "sam. 17/10/2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.FormatDate(tt.input, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatter_FormatDateEnglish(t *testing.T) {
	f, err := New("en-US", "USD", time.UTC)
	require.NoError(t, err)

	got, err := f.FormatDate("2026-10-17", DateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "10/17/2026", got)

	got, err = f.FormatDate("2026-10-17", DateOptions{Weekday: Long, Year: Numeric, Month: Long, Day: Numeric})
	require.NoError(t, err)
	assert.Equal(t, "Saturday, October 17, 2026", got)
}

func TestFormatter_FormatDateInvalid(t *testing.T) {
	f := newFrench(t)

	_, err := f.FormatDate("", DateOptions{})
	assert.Error(t, err)

	_, err = f.FormatDate("pas une date", DateOptions{})
	assert.Error(t, err)
}

func TestFormatter_FormatTime(t *testing.T) {
	f := newFrench(t)

	got, err := f.FormatTime("2026-10-17T09:05:03Z", TimeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "09:05:03", got)

	got, err = f.FormatTime("2026-10-17T21:45:00Z", TimeOptions{OmitSeconds: true})
	require.NoError(t, err)
	assert.Equal(t, "21:45", got)
}

func TestCalculateAge(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		birth time.Time
		today time.Time
		want  int
	}{
		{"birthday today", day(2015, 10, 17), day(2026, 10, 17), 11},
		{"birthday tomorrow", day(2015, 10, 18), day(2026, 10, 17), 10},
		{"birthday yesterday", day(2015, 10, 16), day(2026, 10, 17), 11},
		{"later month", day(2015, 12, 1), day(2026, 10, 17), 10},
		{"earlier month", day(2015, 1, 31), day(2026, 10, 17), 11},
		{"born this year", day(2026, 1, 1), day(2026, 10, 17), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateAge(tt.birth, tt.today))
		})
	}
}

func TestFormatter_Age(t *testing.T) {
	f := newFrench(t)
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	age, err := f.Age("2016-10-18", now)
	require.NoError(t, err)
	assert.Equal(t, 9, age)

	_, err = f.Age("??", now)
	assert.Error(t, err)
}

// normalize folds the locale's grouping spaces into plain spaces
func normalize(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func TestFormatter_FormatCurrency(t *testing.T) {
	f := newFrench(t)

	assert.Equal(t, "12,50\u00a0€", f.FormatCurrency(12.5))
	assert.Equal(t, "0,00\u00a0€", f.FormatCurrency(0))
	assert.Equal(t, "1 234,50 €", normalize(f.FormatCurrency(1234.5)))
}

func TestFormatter_FormatCurrencyIn(t *testing.T) {
	f := newFrench(t)

	got, err := f.FormatCurrencyIn(99, "CHF")
	require.NoError(t, err)
	assert.Equal(t, "99,00 CHF", normalize(got))

	_, err = f.FormatCurrencyIn(1, "ZZZ")
	assert.Error(t, err)

	en, err := New("en-US", "USD", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "$12.50", en.FormatCurrency(12.5))
}

func TestNew_Validation(t *testing.T) {
	_, err := New("not a locale!!", "EUR", nil)
	assert.Error(t, err)

	_, err = New("fr-FR", "EURO", nil)
	assert.Error(t, err)

	f, err := New("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", f.Locale())

	// unsupported languages fall back to French names
	de, err := New("de-DE", "EUR", time.UTC)
	require.NoError(t, err)
	got := de.Date(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), DateOptions{Month: Long, Year: Numeric})
	assert.Equal(t, "octobre 2026", got)
}
