package common

// FileHeader returns the generated-file marker line for a comment style.
func FileHeader(commentPrefix string) string {
	return commentPrefix + " Code generated by nge. DO NOT EDIT."
}
