package restic

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/custodia/internal/domain"
)

func TestParseBackupOutput(t *testing.T) {
	Convey("Given a backup event stream", t, func() {
		Convey("When it contains a summary followed by a snapshot record", func() {
			raw := `{"message_type":"summary","files_new":3,"files_changed":1,"files_unmodified":10,"data_added":2048,"total_bytes_processed":8192}
{"message_type":"snapshot","snapshot_id":"abc123"}`

			result := parseBackupOutput(raw)

			Convey("It should reduce to a single populated result", func() {
				So(result.FilesNew, ShouldEqual, 3)
				So(result.FilesChanged, ShouldEqual, 1)
				So(result.FilesUnmodified, ShouldEqual, 10)
				So(result.DataAdded, ShouldEqual, 2048)
				So(result.TotalBytesProcessed, ShouldEqual, 8192)
				So(result.SnapshotID, ShouldEqual, "abc123")
			})
		})

		Convey("When the stream is empty", func() {
			result := parseBackupOutput("")

			Convey("It should degrade to the zero result with the sentinel id", func() {
				So(result.FilesNew, ShouldEqual, 0)
				So(result.FilesChanged, ShouldEqual, 0)
				So(result.FilesUnmodified, ShouldEqual, 0)
				So(result.DataAdded, ShouldEqual, 0)
				So(result.TotalBytesProcessed, ShouldEqual, 0)
				So(result.SnapshotID, ShouldEqual, domain.UnknownSnapshotID)
			})
		})

		Convey("When the stream contains no JSON at all", func() {
			raw := "scanning files...\nWarning: something odd\ndone."

			result := parseBackupOutput(raw)

			Convey("It should degrade to the zero result", func() {
				So(result.TotalBytesProcessed, ShouldEqual, 0)
				So(result.SnapshotID, ShouldEqual, domain.UnknownSnapshotID)
			})
		})

		Convey("When diagnostic noise is mixed between records", func() {
			raw := `open repository
{"message_type":"status","percent_done":0.5}
some stray line { not json
{"message_type":"summary","files_new":7,"data_added":100}

{"message_type":"snapshot","snapshot_id":"deadbeef"}`

			result := parseBackupOutput(raw)

			Convey("It should skip the undecodable lines and keep the rest", func() {
				So(result.FilesNew, ShouldEqual, 7)
				So(result.DataAdded, ShouldEqual, 100)
				So(result.SnapshotID, ShouldEqual, "deadbeef")
			})
		})

		Convey("When multiple summary records appear", func() {
			raw := `{"message_type":"summary","files_new":1,"data_added":10}
{"message_type":"summary","files_new":9,"data_added":90}`

			result := parseBackupOutput(raw)

			Convey("The last summary should supersede earlier ones", func() {
				So(result.FilesNew, ShouldEqual, 9)
				So(result.DataAdded, ShouldEqual, 90)
			})
		})

		Convey("When only the summary carries a snapshot id", func() {
			raw := `{"message_type":"summary","files_new":2,"snapshot_id":"embedded42"}`

			result := parseBackupOutput(raw)

			Convey("The embedded id should be used", func() {
				So(result.SnapshotID, ShouldEqual, "embedded42")
			})
		})

		Convey("When a snapshot record and an embedded summary id disagree", func() {
			raw := `{"message_type":"snapshot","snapshot_id":"dedicated1"}
{"message_type":"summary","files_new":2,"snapshot_id":"embedded2"}`

			result := parseBackupOutput(raw)

			Convey("The dedicated snapshot record should win", func() {
				So(result.SnapshotID, ShouldEqual, "dedicated1")
			})
		})

		Convey("When only a snapshot record appears, without a summary", func() {
			raw := `{"message_type":"snapshot","snapshot_id":"lonely"}`

			result := parseBackupOutput(raw)

			Convey("It should report zero counts with the harvested id", func() {
				So(result.FilesNew, ShouldEqual, 0)
				So(result.SnapshotID, ShouldEqual, "lonely")
			})
		})
	})
}

func TestParseStats(t *testing.T) {
	Convey("Given stats output", t, func() {
		Convey("When it is a valid stats object", func() {
			stats, err := parseStats(`{"total_size":123456,"total_file_count":78}` + "\n")

			Convey("It should decode both totals", func() {
				So(err, ShouldBeNil)
				So(stats.TotalSize, ShouldEqual, 123456)
				So(stats.TotalFileCount, ShouldEqual, 78)
			})
		})

		Convey("When it is not JSON", func() {
			_, err := parseStats("no stats today")

			Convey("It should return a decode error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "decode stats output")
			})
		})
	})
}

func TestParseSnapshots(t *testing.T) {
	Convey("Given snapshot listing output", t, func() {
		Convey("When the repository is empty", func() {
			Convey("An empty array should yield an empty listing", func() {
				snapshots, err := parseSnapshots("[]")
				So(err, ShouldBeNil)
				So(len(snapshots), ShouldEqual, 0)
			})

			Convey("A null body should yield an empty listing", func() {
				snapshots, err := parseSnapshots("null\n")
				So(err, ShouldBeNil)
				So(len(snapshots), ShouldEqual, 0)
			})

			Convey("A blank body should yield an empty listing", func() {
				snapshots, err := parseSnapshots("  \n")
				So(err, ShouldBeNil)
				So(len(snapshots), ShouldEqual, 0)
			})
		})

		Convey("When snapshots exist", func() {
			raw := `[{"id":"aa11","time":"2026-08-20T03:00:00Z","hostname":"vault","username":"root","paths":["/srv/data"],"tags":["nightly"]}]`

			snapshots, err := parseSnapshots(raw)

			Convey("It should decode every field", func() {
				So(err, ShouldBeNil)
				So(len(snapshots), ShouldEqual, 1)
				So(snapshots[0].ID, ShouldEqual, "aa11")
				So(snapshots[0].Hostname, ShouldEqual, "vault")
				So(snapshots[0].Username, ShouldEqual, "root")
				So(snapshots[0].Paths, ShouldResemble, []string{"/srv/data"})
				So(snapshots[0].Tags, ShouldResemble, []string{"nightly"})
			})
		})

		Convey("When the body is malformed", func() {
			_, err := parseSnapshots("{broken")

			Convey("It should return a decode error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
