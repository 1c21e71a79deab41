package model

import (
	"errors"
	"regexp"
)

// Category classifies a title ("film", "book", ...).  A title references
// at most one category; deleting the category nulls that reference
// without touching the title.
//
// Fields:
//  ID   – primary key identifier.
//  Name – unique display name, at most 250 characters.
//  Slug – unique URL-safe identifier, at most 30 characters.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
	Slug string // categories.slug
}

// Genre tags a title ("drama", "jazz", ...).  Titles carry any number of
// genres through the title_genres join table; deleting a genre removes
// just those associations.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
	Slug string // genres.slug
}

// Title is a catalog entry under review.  Rating is derived from the
// title's reviews on every read and is never stored, which is why the
// struct has no rating field.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the work.
//  Year        – release year; lists are ordered by it descending.
//  Description – optional free-form text.
//  CategoryID  – optional category reference (null after category delete).
type Title struct {
	ID          uint64  // titles.id
	Name        string  // titles.name
	Year        int     // titles.year
	Description *string // titles.description (nullable)
	CategoryID  *uint64 // titles.category_id (nullable)
}

const (
	NameMaxLen  = 250
	SlugMaxLen  = 30
	TitleMaxLen = 200
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name must be at most 250 characters")
	ErrSlugRequired = errors.New("slug is required")
	ErrSlugTooLong  = errors.New("slug must be at most 30 characters")
	ErrSlugPattern  = errors.New("slug may contain only lowercase letters, digits and hyphens")
	ErrTitleTooLong = errors.New("name must be at most 200 characters")
	ErrYearRequired = errors.New("year is required")
)

var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateNameSlug covers the shared name+slug shape of categories and
// genres.
func ValidateNameSlug(name, slug string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > NameMaxLen {
		return ErrNameTooLong
	}
	if slug == "" {
		return ErrSlugRequired
	}
	if len(slug) > SlugMaxLen {
		return ErrSlugTooLong
	}
	if !slugRe.MatchString(slug) {
		return ErrSlugPattern
	}
	return nil
}

// ValidateTitle checks the writable fields of a title.
func ValidateTitle(name string, year int) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > TitleMaxLen {
		return ErrTitleTooLong
	}
	if year == 0 {
		return ErrYearRequired
	}
	return nil
}
