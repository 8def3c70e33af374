package cache

import "fmt"

// Key layout for the coordinator's Redis namespace. Everything lives under
// the crawl: prefix so the instance can share Redis with other services.
const (
	pendingAllKey    = "crawl:jobs:pending:all"
	pendingDomainFmt = "crawl:jobs:pending:domain:%s"
	jobDetailFmt     = "crawl:job:%s"
	productURLFmt    = "crawl:url:%s"

	// PendingPattern matches every pending-jobs list key, for bulk
	// invalidation after job creation or leasing.
	PendingPattern = "crawl:jobs:pending:*"
)

// PendingJobsKey returns the cache key for the pending-jobs list, scoped to
// a domain when domainID is non-empty.
func PendingJobsKey(domainID string) string {
	if domainID == "" {
		return pendingAllKey
	}
	return fmt.Sprintf(pendingDomainFmt, domainID)
}

// JobDetailKey returns the cache key for a single job snapshot.
func JobDetailKey(jobID string) string {
	return fmt.Sprintf(jobDetailFmt, jobID)
}

// ProductURLKey returns the cache key for a product URL record.
func ProductURLKey(urlHash string) string {
	return fmt.Sprintf(productURLFmt, urlHash)
}
