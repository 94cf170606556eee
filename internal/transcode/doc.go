package transcode

// Package transcode turns downloaded audio streams into MP3 files with
// ffmpeg. Conversion progress is read from ffmpeg's -progress output and
// scaled by the duration ffprobe reports.
