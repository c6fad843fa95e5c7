package version

// Version is the current peer-metrics release
const Version = "0.3.0"
