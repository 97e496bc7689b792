package repository

import "fmt"

// DefaultNamespace matches the prefix used by the mobile client's storage.
const DefaultNamespace = "@gofinance"

// TransactionsKey is where a user's whole transaction collection lives.
func TransactionsKey(namespace, userID string) string {
	return fmt.Sprintf("%s:transactions_user:%s", namespace, userID)
}

// UserKey is where the signed-in profile of a user lives.
func UserKey(namespace, userID string) string {
	return fmt.Sprintf("%s:user:%s", namespace, userID)
}
