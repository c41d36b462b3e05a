package domain

// PostDateLayout renders publication dates as "Month DD, YYYY".
const PostDateLayout = "January 02, 2006"

// Post is a blog entry written by the owner.
type Post struct {
	ID       int64
	AuthorID int64
	Title    string
	Subtitle string
	// Date is fixed at creation time and stored as display text.
	Date   string
	Body   string
	ImgURL string

	Author *User
}
