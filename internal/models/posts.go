package models

import "sort"

// PostRecord is a single social post about a cashtag. Hours is how long ago
// the post was made.
type PostRecord struct {
	Hours   float64 `json:"hours"`
	Text    string  `json:"text"`
	TweetID *int64  `json:"tweet_id,omitempty"`
}

// SortPostsByHours orders posts ascending by Hours in place. The sort is
// stable so posts with equal Hours keep their stored order.
func SortPostsByHours(posts []PostRecord) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Hours < posts[j].Hours
	})
}
