package restic

import (
	"strconv"

	"github.com/semmidev/custodia/internal/domain"
)

// forgetArgs encodes a retention policy as the forget subcommand's
// argument vector. Absent buckets contribute no flag at all: omission
// means unconstrained, not keep-none. Forget is never run without
// --prune in this system.
func forgetArgs(policy domain.RetentionPolicy, tag string) []string {
	args := []string{"--prune"}

	buckets := []struct {
		flag  string
		count *int
	}{
		{"--keep-last", policy.KeepLast},
		{"--keep-hourly", policy.KeepHourly},
		{"--keep-daily", policy.KeepDaily},
		{"--keep-weekly", policy.KeepWeekly},
		{"--keep-monthly", policy.KeepMonthly},
		{"--keep-yearly", policy.KeepYearly},
	}
	for _, b := range buckets {
		if b.count != nil {
			args = append(args, b.flag, strconv.Itoa(*b.count))
		}
	}

	if tag != "" {
		args = append(args, "--tag", tag)
	}

	return args
}

func backupArgs(sourcePath string, opts domain.BackupOptions) []string {
	args := []string{sourcePath, "--json"}

	if opts.Tag != "" {
		args = append(args, "--tag", opts.Tag)
	}
	for _, pattern := range opts.Excludes {
		args = append(args, "--exclude", pattern)
	}
	if opts.ExcludeFile != "" {
		args = append(args, "--exclude-file", opts.ExcludeFile)
	}

	return args
}

func snapshotsArgs(tag string) []string {
	args := []string{"--json"}
	if tag != "" {
		args = append(args, "--tag", tag)
	}
	return args
}

func statsArgs(mode string) []string {
	return []string{"--mode", mode, "--json"}
}

func restoreArgs(snapshotID, target, tag string) []string {
	args := []string{snapshotID, "--target", target}
	if tag != "" {
		args = append(args, "--tag", tag)
	}
	return args
}
