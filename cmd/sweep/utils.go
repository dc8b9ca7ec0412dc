package sweep

import (
	"github.com/hashicorp/go-hclog"
)

// logStartupParameters records the effective run parameters up front so the
// results file can be matched to the sweep that produced it.
func logStartupParameters(log hclog.Logger, options *RunOptionsSweep) {
	log.Warn("starting sweep",
		"bucket", options.Bucket,
		"prefix", options.Prefix,
		"start", options.Start,
		"end", options.End,
		"download_dir", options.DownloadDir,
		"results_file", options.ResultsFile,
		"profile", options.Profile,
		"threads", options.Threads,
	)
}
