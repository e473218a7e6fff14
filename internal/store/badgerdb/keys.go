package badgerdb

import "fmt"

// Key layout. Numeric IDs are zero-padded so byte order matches numeric order.
const (
	bookPrefix    = "book:"
	userPrefix    = "user:"
	usernameIndex = "idx:username:"
	entryPrefix   = "entry:"
	idWidth       = 20
)

func bookKey(id int64) []byte {
	return fmt.Appendf(nil, "%s%0*d", bookPrefix, idWidth, id)
}

func userKey(id int64) []byte {
	return fmt.Appendf(nil, "%s%0*d", userPrefix, idWidth, id)
}

func usernameKey(username string) []byte {
	return append([]byte(usernameIndex), username...)
}

// userEntriesPrefix groups every library entry a user owns.
func userEntriesPrefix(userID int64) []byte {
	return fmt.Appendf(nil, "%s%0*d:", entryPrefix, idWidth, userID)
}

func entryKey(userID, bookID int64) []byte {
	return fmt.Appendf(userEntriesPrefix(userID), "%0*d", idWidth, bookID)
}
