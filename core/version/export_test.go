package version

// FromBuildInfo is exported for testing.
var FromBuildInfo = fromBuildInfo
