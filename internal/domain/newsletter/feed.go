// Package newsletter defines the newsletter domain models.
package newsletter

// FeedPost is one item of a newsletter feed.
type FeedPost struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Feed is the list of posts of a newsletter, in the order the feed lists them.
type Feed struct {
	Posts []FeedPost `json:"posts"`
}

// Count returns the number of posts in the feed.
func (f Feed) Count() int {
	return len(f.Posts)
}
