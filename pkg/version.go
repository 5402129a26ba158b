package pkg

import "fmt"

var (
	// These variables are here only to show current version. They are set with -ldflags during release builds
	DistmetaVersion         = "devel"
	GitRevision             = "devel"
	DistmetaVersionRevision = fmt.Sprintf("%s-%s", DistmetaVersion, GitRevision)
)
