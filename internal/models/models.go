package models

import "time"

// Gender values accepted on user profiles
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User represents a registered user and their points balance
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Points       int       `json:"points"`
	Gender       string    `json:"gender"`
	Age          int       `json:"age"`
	ResetToken   *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Photo represents an uploaded photo owned by a user
type Photo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FilePath  string    `json:"filePath"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Rating is a single score given by a rater to someone else's photo.
// Gender and age are copied from the rater when the rating is created.
type Rating struct {
	ID          string    `json:"id"`
	PhotoID     string    `json:"photoId"`
	RaterID     string    `json:"raterId"`
	Score       int       `json:"score"`
	RaterGender string    `json:"raterGender"`
	RaterAge    int       `json:"raterAge"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Owner is the public part of a user shown next to an evaluation candidate
type Owner struct {
	ID     string `json:"id"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
}

// Candidate is a photo offered to a rater in the evaluation feed
type Candidate struct {
	ID       string `json:"id"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
	Owner    Owner  `json:"owner"`
}

// CandidateFilter narrows the evaluation feed by owner demographics.
// Nil fields are unconstrained.
type CandidateFilter struct {
	Gender *string
	MinAge *int
	MaxAge *int
}

// Age bucket keys used in PhotoStats.AgeStats
const (
	AgeUnder20 = "under20"
	Age20To30  = "20-30"
	Age30To40  = "30-40"
	AgeOver40  = "over40"
)

// PhotoStats aggregates the ratings of a photo
type PhotoStats struct {
	TotalRatings int            `json:"totalRatings"`
	AverageScore float64        `json:"averageScore"`
	GenderStats  map[string]int `json:"genderStats"`
	AgeStats     map[string]int `json:"ageStats"`
}

// PhotoWithStats is a photo as listed to its owner
type PhotoWithStats struct {
	ID       string `json:"id"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
	IsActive bool   `json:"isActive"`
	PhotoStats
}
