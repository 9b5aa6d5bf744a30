package cart

// NoticeKind enumerates the user-facing outcomes of cart actions.
type NoticeKind string

const (
	NoticeNone               NoticeKind = ""
	NoticeItemAdded          NoticeKind = "item_added"
	NoticeSubscriptionAdded  NoticeKind = "subscription_added"
	NoticeSubscriptionExists NoticeKind = "subscription_exists"
	NoticeCartEmpty          NoticeKind = "cart_empty"
	NoticeCheckoutComplete   NoticeKind = "checkout_complete"
	NoticeContactSent        NoticeKind = "contact_sent"
	NoticeContactInvalid     NoticeKind = "contact_invalid"
)

// Notice is returned instead of interrupting the user with a dialog. The HTTP
// layer localises it.
type Notice struct {
	Kind     NoticeKind
	Name     string
	Quantity int
	Total    int64
	OrderID  string
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool {
	return n.Kind == NoticeNone
}
