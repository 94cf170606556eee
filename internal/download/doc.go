package download

// Package download implements the audio download pipeline: resolve a video,
// fetch its best audio stream, convert it to MP3 and tag it. It manages the
// task lifecycle, the parallelism limit and progress propagation to the UI.
