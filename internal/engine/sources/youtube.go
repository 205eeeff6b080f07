// Package sources fetches YouTube captions and video metadata.
//
// The implementation is split across three files by responsibility:
//
//	youtube_innertube.go   Innertube API types, constants and low-level HTTP primitives
//	youtube_transcript.go  transcript sources (watch page, engagement panel) and the
//	                       Fetcher that applies the fallback policy
//	youtube_details.go     channel and statistics via the Data API v3
package sources
