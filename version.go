package schema

// Version is the module release.
const Version = "0.1.0"
