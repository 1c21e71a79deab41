package model

import (
	"errors"
	"time"
)

// Review is an authored score-plus-text verdict on a title.  The pair
// (TitleID, AuthorID) is unique: an author holds at most one review per
// title, and the database index enforces that atomically.
type Review struct {
	ID        uint64    // reviews.id
	TitleID   uint64    // reviews.title_id
	AuthorID  uint64    // reviews.author_id
	Score     int       // reviews.score, 1..10
	Text      string    // reviews.text
	CreatedAt time.Time // reviews.created_at (server-assigned)
}

// Comment is a free-text reply attached to a review.  No uniqueness
// constraint applies; an author may comment any number of times.
type Comment struct {
	ID        uint64    // comments.id
	ReviewID  uint64    // comments.review_id
	AuthorID  uint64    // comments.author_id
	Text      string    // comments.text
	CreatedAt time.Time // comments.created_at (server-assigned)
}

const (
	ScoreMin = 1
	ScoreMax = 10
)

var (
	ErrScoreOutOfRange = errors.New("score must be between 1 and 10")
	ErrTextRequired    = errors.New("text is required")
)

// ValidateScore rejects scores outside [1,10].
func ValidateScore(score int) error {
	if score < ScoreMin || score > ScoreMax {
		return ErrScoreOutOfRange
	}
	return nil
}
