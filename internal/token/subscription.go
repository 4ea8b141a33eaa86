package token

// Subscription is the payload of the subscription cookie. It is encoded, not
// encrypted: the ids and email are visible to the client but cannot be altered
// without the server secret.
type Subscription struct {
	Token          string `json:"token"`
	SubscriptionID string `json:"subId"`
	CustomerID     string `json:"custId"`
	Email          string `json:"email"`
}

func subscriptionDigest(secret, subscriptionID, customerID string) string {
	return Sign([]byte(secret), subscriptionID, customerID)
}

// IssueSubscription mints the opaque cookie value for a verified subscription.
func IssueSubscription(secret, subscriptionID, customerID, email string) (string, error) {
	return Encode(Subscription{
		Token:          subscriptionDigest(secret, subscriptionID, customerID),
		SubscriptionID: subscriptionID,
		CustomerID:     customerID,
		Email:          email,
	})
}

// ParseSubscription decodes a cookie value and recomputes its digest.
func ParseSubscription(value, secret string) (Subscription, Result) {
	var sub Subscription
	if secret == "" || !Decode(value, &sub) {
		return Subscription{}, Malformed
	}
	if sub.Token == "" || sub.SubscriptionID == "" || sub.CustomerID == "" {
		return Subscription{}, Malformed
	}
	if !Verify(sub.Token, subscriptionDigest(secret, sub.SubscriptionID, sub.CustomerID)) {
		return Subscription{}, Forged
	}
	return sub, Valid
}
