package config

// WorkerKeyStruct names the Redis queues consumed by background workers.
type WorkerKeyStruct struct {
	PersistResultsQueue       string
	PersistProctorEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResultsQueue:       "persist_results_queue",
	PersistProctorEventsQueue: "persist_proctor_events_queue",
}
