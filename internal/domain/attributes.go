package domain

import (
	"strings"
	"time"
)

// Gender is the audience of a fragrance
type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderUnisex Gender = "unisex"
)

// FragranceType is the concentration of a fragrance
type FragranceType string

const (
	FragranceEDP     FragranceType = "EDP"
	FragranceEDT     FragranceType = "EDT"
	FragranceParfum  FragranceType = "Parfum"
	FragranceExtrait FragranceType = "Extrait"
)

// Season is a seasonal collection scope
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonSpring Season = "spring"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// NotesFamily is the olfactory family
type NotesFamily string

const (
	NotesWoody    NotesFamily = "woody"
	NotesFloral   NotesFamily = "floral"
	NotesOriental NotesFamily = "oriental"
	NotesFresh    NotesFamily = "fresh"
	NotesCitrus   NotesFamily = "citrus"
	NotesSpicy    NotesFamily = "spicy"
)

var (
	genders        = []Gender{GenderMen, GenderWomen, GenderUnisex}
	fragranceTypes = []FragranceType{FragranceEDP, FragranceEDT, FragranceParfum, FragranceExtrait}
	seasons        = []Season{SeasonSummer, SeasonSpring, SeasonAutumn, SeasonWinter}
	notesFamilies  = []NotesFamily{NotesWoody, NotesFloral, NotesOriental, NotesFresh, NotesCitrus, NotesSpicy}
)

// Genders lists the known genders
func Genders() []Gender { return append([]Gender(nil), genders...) }

// FragranceTypes lists the known fragrance types
func FragranceTypes() []FragranceType { return append([]FragranceType(nil), fragranceTypes...) }

// Seasons lists the known seasons
func Seasons() []Season { return append([]Season(nil), seasons...) }

// ParseGender matches a gender case-insensitively
func ParseGender(s string) (Gender, bool) {
	for _, g := range genders {
		if strings.EqualFold(string(g), strings.TrimSpace(s)) {
			return g, true
		}
	}
	return "", false
}

// ParseFragranceType matches a fragrance type case-insensitively and returns its canonical form
func ParseFragranceType(s string) (FragranceType, bool) {
	for _, t := range fragranceTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// ParseSeason matches a season case-insensitively
func ParseSeason(s string) (Season, bool) {
	for _, v := range seasons {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, true
		}
	}
	return "", false
}

// ParseNotesFamily matches a notes family case-insensitively
func ParseNotesFamily(s string) (NotesFamily, bool) {
	for _, v := range notesFamilies {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, true
		}
	}
	return "", false
}

// SeasonAt returns the northern-hemisphere season for t
func SeasonAt(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
