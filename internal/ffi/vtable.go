package ffi

// Slot indices into the engine's API function table, in the order the
// native header declares them. The engine guarantees the layout is
// append-only across releases; these must never be reordered.
const (
	slotGetErrorCode = iota
	slotGetErrorMessage
	slotReleaseStatus
	slotCreateEnv
	slotReleaseEnv
	slotGetBuildInfoString
	slotGetAvailableProviders
	slotReleaseAvailableProviders
	slotCreateMemoryInfo
	slotReleaseMemoryInfo
	slotGetDefaultAllocator
	slotCreateAllocator
	slotReleaseAllocator
	slotAllocatorAlloc
	slotAllocatorFree
	slotCreateTensorWithData
	slotCreateTensorAsValue
	slotCreateValue
	slotGetValueType
	slotGetTensorTypeAndShape
	slotGetTensorElementType
	slotGetDimensionsCount
	slotGetDimensions
	slotReleaseTensorTypeAndShapeInfo
	slotGetTensorMutableData
	slotGetValueCount
	slotGetValue
	slotReleaseValue
	slotCreateSessionOptions
	slotSetIntraOpNumThreads
	slotSetInterOpNumThreads
	slotSetGraphOptimizationLevel
	slotEnableMemPattern
	slotDisableMemPattern
	slotEnableCpuMemArena
	slotDisableCpuMemArena
	slotAppendExecutionProvider
	slotReleaseSessionOptions
	slotCreateSession
	slotCreateSessionFromArray
	slotSessionGetInputCount
	slotSessionGetOutputCount
	slotSessionGetInputName
	slotSessionGetOutputName
	slotSessionGetInputTypeInfo
	slotSessionGetOutputTypeInfo
	slotRun
	slotReleaseSession

	slotCount
)

// Version of the API table the binding was written against, handed to the
// engine's GetApi entry point.
const apiVersion = 1
