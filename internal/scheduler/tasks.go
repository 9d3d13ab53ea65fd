package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskSequenceTick = "sequences.tick"

const TaskLeadRescore = "leads.rescore"

type SequenceTickPayload struct {
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

type LeadRescorePayload struct {
	Day string `json:"day"`
}

func NewSequenceTickTask(payload SequenceTickPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSequenceTick, data), nil
}

func ParseSequenceTickPayload(task *asynq.Task) (SequenceTickPayload, error) {
	var payload SequenceTickPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SequenceTickPayload{}, err
	}
	return payload, nil
}

func NewLeadRescoreTask(payload LeadRescorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadRescore, data), nil
}

func ParseLeadRescorePayload(task *asynq.Task) (LeadRescorePayload, error) {
	var payload LeadRescorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadRescorePayload{}, err
	}
	return payload, nil
}
