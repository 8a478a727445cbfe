package taskname

const (
	// Import pipeline tasks
	ImportDispatch = "import:dispatch"
	ImportRecover  = "import:recover"
)
