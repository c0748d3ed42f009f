package common

// UnknownStr is the String() result of enum values outside their declared range.
const UnknownStr = "unknown"
