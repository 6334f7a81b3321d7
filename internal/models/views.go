package models

// PostDetail is the merged view model the detail page renders: the post, its
// author, every attached image, annotated comments, the full like list, and
// whether the requesting account is among the likers.
type PostDetail struct {
	Post       Post          `json:"post"`
	AuthorName string        `json:"author_name"`
	Images     []PostImage   `json:"images"`
	Comments   []CommentView `json:"comments"`
	Likes      []Like        `json:"likes"`
	Liked      bool          `json:"liked"`
}

// Session is the authenticated identity plus its profile, as returned by the
// session lookup and the auth endpoints.
type Session struct {
	User    User     `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
}
