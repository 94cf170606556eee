package model

// TaskStatus represents the status of an audio download task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusStarting means the video and its streams are being resolved
	TaskStatusStarting TaskStatus = "Starting"

	// TaskStatusDownloading means the audio stream is being fetched
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusConverting means ffmpeg is producing the MP3
	TaskStatusConverting TaskStatus = "Converting"

	// TaskStatusStopping means the task is in the process of stopping
	TaskStatusStopping TaskStatus = "Stopping"

	// TaskStatusStopped means the task was stopped by user
	TaskStatusStopped TaskStatus = "Stopped"

	// TaskStatusCompleted means the MP3 was written
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusSkipped means the MP3 already existed in the target directory
	TaskStatusSkipped TaskStatus = "Skipped"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	switch ts {
	case TaskStatusStarting, TaskStatusDownloading, TaskStatusConverting, TaskStatusStopping:
		return true
	}
	return false
}

// IsFinished returns true if the task is in a finished state
func (ts TaskStatus) IsFinished() bool {
	switch ts {
	case TaskStatusCompleted, TaskStatusSkipped, TaskStatusStopped, TaskStatusError:
		return true
	}
	return false
}
