// Package i18n holds the user-facing text tables and locale formatting.
package i18n

import "strings"

const (
	Uzbek   = "uz"
	English = "en"
	Russian = "ru"

	DefaultLanguage = Uzbek
)

// Languages lists the supported languages, default first.
var Languages = []string{Uzbek, English, Russian}

// Translations contains all text strings for the application
type Translations struct {
	// Header
	FindNearestStations string
	Logout              string

	// Location
	LoadingLocation      string
	LocationNotSupported string
	LocationNotFound     string

	// Station list
	BestStation   string
	HighlyRated   string
	SortBy        string
	FuelType      string
	AllTypes      string
	Nearest       string
	LowestPrice   string
	HighestRating string
	NoStations    string
	Currency      string
	Price         string
	Kilometers    string
	OpenNow       string
	Directions    string

	// Reviews
	AddReview    string
	YourName     string
	EnterName    string
	Rating       string
	Comment      string
	Optional     string
	WriteComment string
	Cancel       string
	Submit       string
	Submitting   string
	SelectRating string
	ReviewAdded  string
	ReviewError  string
	Reviews      string
	NoReviews    string
	ViewReviews  string

	// Generic
	Error   string
	Success string
	Loading string

	// Errors
	InvalidCredentials string
	EmailInUse         string
	InvalidEmail       string
	PasswordTooShort   string
	PasswordMismatch   string
	NameRequired       string
	StationNotFound    string
	NotInView          string
	MapUnavailable     string
	InvalidRequest     string
	Unauthorized       string
	InternalError      string
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) Translations {
	switch Normalize(lang) {
	case English:
		return GetEnglishTranslations()
	case Russian:
		return GetRussianTranslations()
	default:
		return GetUzbekTranslations()
	}
}

// Normalize maps a language tag to a supported language, defaults to Uzbek.
// Region subtags are ignored, so "ru-RU" is Russian.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	switch lang {
	case English, "english":
		return English
	case Russian, "russian":
		return Russian
	default:
		return DefaultLanguage
	}
}

// Supported reports whether lang names a supported language exactly.
func Supported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// SortLabel returns the label of a sort key.
func (t Translations) SortLabel(key string) string {
	switch key {
	case "price":
		return t.LowestPrice
	case "rating":
		return t.HighestRating
	default:
		return t.Nearest
	}
}
