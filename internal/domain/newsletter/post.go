package newsletter

// Post holds the readable text of a single post.
type Post struct {
	Content string `json:"content"`
}

// Region is the part of a page located as the post body.
type Region struct {
	Text  string
	HTML  string
	Found bool
}

// PostKind tells the variants of PostResult apart.
type PostKind int

const (
	// PostEmpty means the page was fetched but its body was empty.
	PostEmpty PostKind = iota
	// PostContent means the page had a body. Content may still be empty when
	// the content region was not found.
	PostContent
	// PostFailed means the page could not be fetched or parsed.
	PostFailed
)

func (k PostKind) String() string {
	switch k {
	case PostEmpty:
		return "empty"
	case PostContent:
		return "content"
	case PostFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PostResult is the outcome of reading a post's content region.
type PostResult struct {
	Kind    PostKind
	Content string
	// Located reports whether the content region matched.
	Located bool
	Reason  error
}

// ContentResult builds a PostContent result.
func ContentResult(content string, located bool) PostResult {
	return PostResult{Kind: PostContent, Content: content, Located: located}
}

// EmptyResult builds a PostEmpty result.
func EmptyResult() PostResult {
	return PostResult{Kind: PostEmpty}
}

// FailedResult builds a PostFailed result carrying the reason.
func FailedResult(reason error) PostResult {
	return PostResult{Kind: PostFailed, Reason: reason}
}

// Present reports whether the page had a body.
func (r PostResult) Present() bool {
	return r.Kind == PostContent
}

// Err returns the failure reason for PostFailed results and nil otherwise.
func (r PostResult) Err() error {
	if r.Kind != PostFailed {
		return nil
	}
	return r.Reason
}
