package config

type WorkerKeyStruct struct {
	ReconcileResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ReconcileResultsQueue: "reconcile_results_queue",
}
