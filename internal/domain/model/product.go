package model

type ModerationState string

const (
	PendingReview ModerationState = "pending_review"
	Published     ModerationState = "published"
	// Rejected products are deleted from the backend; the state only exists
	// on the notification side.
	Rejected ModerationState = "rejected"
)

func (s ModerationState) Terminal() bool {
	return s == Published || s == Rejected
}

// Product is a catalog entry awaiting or past moderation.
type Product struct {
	ID          EntityID
	Title       string
	Description string
	Price       string
	ImageURL    string
	State       ModerationState
}

func (p *Product) HasImage() bool { return p != nil && p.ImageURL != "" }
