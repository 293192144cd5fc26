package domain

// FederatedProfile is what an external identity provider tells us about a user
// after a successful consent round-trip.
type FederatedProfile struct {
	Provider    string
	ProviderID  string
	Email       string
	DisplayName string
	PhotoURL    string
}

type ResolveOutcome int

const (
	ResolvedExisting ResolveOutcome = iota
	ResolvedLinked
	ResolvedCreated
)

func (o ResolveOutcome) String() string {
	switch o {
	case ResolvedExisting:
		return "existing"
	case ResolvedLinked:
		return "linked"
	case ResolvedCreated:
		return "created"
	default:
		return "unknown"
	}
}
