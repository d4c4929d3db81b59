// Package format renders dates, times, ages and amounts the way the camp
// pages display them (French locale by default).
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale   = "fr-FR"
	DefaultCurrency = "EUR"

	nbsp = "\u00a0"
)

// Component styles accepted by DateOptions
const (
	Long    = "long"
	Short   = "short"
	Numeric = "numeric"
	TwoDig  = "2-digit"
)

var supported = language.NewMatcher([]language.Tag{language.French, language.English})

// DateOptions selects which date components are shown. Zero options mean
// day, month and year in numeric form.
type DateOptions struct {
	Weekday string `json:"weekday,omitempty"`
	Day     string `json:"day,omitempty"`
	Month   string `json:"month,omitempty"`
	Year    string `json:"year,omitempty"`
}

func (o DateOptions) isZero() bool {
	return o.Weekday == "" && o.Day == "" && o.Month == "" && o.Year == ""
}

// TimeOptions controls time rendering
type TimeOptions struct {
	OmitSeconds bool `json:"omit_seconds,omitempty"`
}

// Formatter formats values for one locale and currency
type Formatter struct {
	tag      language.Tag
	base     language.Base
	currency currency.Unit
	loc      *time.Location
	printer  *message.Printer
}

// New creates a Formatter. Unknown locales fall back to French.
func New(locale, currencyCode string, loc *time.Location) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	if loc == nil {
		loc = time.Local
	}

	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", currencyCode, err)
	}

	_, idx, _ := supported.Match(requested)
	tag := []language.Tag{language.French, language.English}[idx]
	base, _ := tag.Base()

	return &Formatter{
		tag:      requested,
		base:     base,
		currency: unit,
		loc:      loc,
		printer:  message.NewPrinter(requested),
	}, nil
}

// Default returns a fr-FR / EUR formatter in the local time zone
func Default() *Formatter {
	f, _ := New(DefaultLocale, DefaultCurrency, time.Local)
	return f
}

// Locale returns the configured locale tag
func (f *Formatter) Locale() string { return f.tag.String() }

func (f *Formatter) french() bool {
	fr, _ := language.French.Base()
	return f.base == fr
}

// Parse reads a date or date-time in any common layout
func (f *Formatter) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(input, f.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", input, err)
	}
	return t.In(f.loc), nil
}

// FormatDate parses input and renders its date part
func (f *Formatter) FormatDate(input string, opts DateOptions) (string, error) {
	t, err := f.Parse(input)
	if err != nil {
		return "", err
	}
	return f.Date(t, opts), nil
}

// Date renders t, e.g. "17/10/2026" or "samedi 17 octobre 2026"
func (f *Formatter) Date(t time.Time, opts DateOptions) string {
	if opts.isZero() {
		opts = DateOptions{Day: Numeric, Month: Numeric, Year: Numeric}
	}

	names := englishNames
	if f.french() {
		names = frenchNames
	}

	var weekday string
	switch opts.Weekday {
	case Long:
		weekday = names.weekdays[t.Weekday()]
	case Short:
		weekday = names.shortWeekdays[t.Weekday()]
	}

	day := ""
	switch opts.Day {
	case TwoDig:
		day = fmt.Sprintf("%02d", t.Day())
	case Numeric:
		day = strconv.Itoa(t.Day())
	}

	year := ""
	switch opts.Year {
	case Numeric:
		year = strconv.Itoa(t.Year())
	case TwoDig:
		year = fmt.Sprintf("%02d", t.Year()%100)
	}

	if opts.Month == Long || opts.Month == Short {
		month := names.months[t.Month()-1]
		if opts.Month == Short {
			month = names.shortMonths[t.Month()-1]
		}
		if f.french() {
			return joinNonEmpty(" ", weekday, day, month, year)
		}
		md := joinNonEmpty(" ", month, day)
		if year != "" {
			if day != "" {
				md += ","
			}
			md = joinNonEmpty(" ", md, year)
		}
		if weekday != "" {
			return weekday + ", " + md
		}
		return md
	}

	month := ""
	switch opts.Month {
	case Numeric, TwoDig:
		month = fmt.Sprintf("%02d", int(t.Month()))
	}

	var numeric string
	if f.french() {
		// fr-FR pads numeric day and month
		if day != "" {
			day = fmt.Sprintf("%02d", t.Day())
		}
		numeric = joinNonEmpty("/", day, month, year)
	} else {
		if opts.Month == Numeric {
			month = strconv.Itoa(int(t.Month()))
		}
		numeric = joinNonEmpty("/", month, day, year)
	}

	if weekday != "" {
		if f.french() {
			return joinNonEmpty(" ", weekday, numeric)
		}
		return joinNonEmpty(", ", weekday, numeric)
	}
	return numeric
}

// FormatTime parses input and renders its time of day
func (f *Formatter) FormatTime(input string, opts TimeOptions) (string, error) {
	t, err := f.Parse(input)
	if err != nil {
		return "", err
	}
	return f.Time(t, opts), nil
}

// Time renders t as 15:04:05, or 15:04 without seconds
func (f *Formatter) Time(t time.Time, opts TimeOptions) string {
	if opts.OmitSeconds {
		return t.Format("15:04")
	}
	return t.Format("15:04:05")
}

// CalculateAge returns full years between birth and today, one less when
// the birthday has not come yet this year.
func CalculateAge(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	monthDiff := int(today.Month()) - int(birth.Month())
	if monthDiff < 0 || (monthDiff == 0 && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// Age parses a birth date and returns the age at now
func (f *Formatter) Age(birth string, now time.Time) (int, error) {
	b, err := f.Parse(birth)
	if err != nil {
		return 0, err
	}
	return CalculateAge(b, now.In(f.loc)), nil
}

// FormatCurrency renders amount in the configured currency, e.g. "12,50 €"
func (f *Formatter) FormatCurrency(amount float64) string {
	return f.formatAmount(amount, f.currency)
}

// FormatCurrencyIn renders amount in the currency with ISO code code
func (f *Formatter) FormatCurrencyIn(amount float64, code string) (string, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return f.formatAmount(amount, unit), nil
}

func (f *Formatter) formatAmount(amount float64, unit currency.Unit) string {
	scale, _ := currency.Standard.Rounding(unit)
	digits := f.printer.Sprint(number.Decimal(amount, number.Scale(scale)))
	symbol := currencySymbol(unit)

	if f.french() {
		return digits + nbsp + symbol
	}
	if strings.HasPrefix(digits, "-") {
		return "-" + symbol + strings.TrimPrefix(digits, "-")
	}
	return symbol + digits
}

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF",
	"CAD": "$CA",
	"MAD": "MAD",
	"XOF": "F\u202fCFA",
}

func currencySymbol(unit currency.Unit) string {
	if s, ok := symbols[unit.String()]; ok {
		return s
	}
	return unit.String()
}

type localeNames struct {
	weekdays      [7]string
	shortWeekdays [7]string
	months        [12]string
	shortMonths   [12]string
}

var frenchNames = localeNames{
	weekdays:      [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
	shortWeekdays: [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
	months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	shortMonths: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin",
		"juil.", "août", "sept.", "oct.", "nov.", "déc."},
}

var englishNames = localeNames{
	weekdays:      [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	shortWeekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	shortMonths: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
