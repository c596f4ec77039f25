package domain

// UserProfile is the directory entry shown next to an address in the feed
type UserProfile struct {
	Address    string
	Username   string
	AvatarSeed string
}
