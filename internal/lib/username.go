package lib

import "strings"

// SplitUsername splits a pool login of the form "account.worker" into its
// account and worker parts. ok is false when there is no '.' separator, in
// which case workerName is empty and accountName is the whole string.
func SplitUsername(username string) (accountName string, workerName string, ok bool) {
	return strings.Cut(username, ".")
}
