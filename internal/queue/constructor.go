package queue

import (
	"github.com/maheshrc27/postpilot/internal/service"
)

type Queue struct {
	dispatcher service.DispatcherService
}

func NewQueue(dispatcher service.DispatcherService) *Queue {
	return &Queue{dispatcher: dispatcher}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
