package client

import "github.com/nimbus-mining/poolclient/stratum"

const jobHistorySize = 16

// recordJob appends w to the bounded recent-job history, keyed by job id.
// The history outlives c.current once a newer job supersedes it, so a
// diagnostics caller (or a late-arriving solution) can still look up the
// parameters of a job that was current moments ago.
func (c *Client) recordJob(w stratum.Work) {
	c.jobs.Push(w.JobID, w)
}

// JobByID looks up a recently received job by id. ok is false once the job
// has aged out of the bounded history.
func (c *Client) JobByID(jobID string) (stratum.Work, bool) {
	return c.jobs.Get(jobID)
}

// RecentJobs returns the bounded job history, oldest first.
func (c *Client) RecentJobs() []stratum.Work {
	keys := c.jobs.Keys()
	out := make([]stratum.Work, 0, len(keys))
	for _, k := range keys {
		if w, ok := c.jobs.Get(k); ok {
			out = append(out, w)
		}
	}
	return out
}
