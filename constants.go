package siggen

// Channel parameter defaults
const (
	defaultFrequency    = 1000.0 // Hz
	defaultAmplitudeDB  = 0.0    // unity gain
	defaultPhaseDegrees = 0.0    // degrees
	defaultSquareDuty   = 0.5    // duty used when a square is named without one
)

// Engine defaults
const (
	// DefaultSampleRate is reported by Engine.SampleRate before any stream
	// has published its real rate.
	DefaultSampleRate = 48000.0

	// DefaultQueueCapacity sizes the control queue for a short burst of UI
	// driven updates.
	DefaultQueueCapacity = 16

	// maxQueueCapacity is the upper bound accepted by Config.Validate.
	maxQueueCapacity = 1 << 16

	// MaxChannels bounds SetParams indices. Messages addressing a channel at
	// or past it are rejected by the codec and ignored by the Processor.
	MaxChannels = 1024
)

// Waveform constants
const (
	dbPerDecade      = 20.0  // gain = 10^(dB/20)
	degreesPerCircle = 360.0 // degrees in one full cycle
	triangleQuarters = 4.0   // triangle shape works in quarter cycles
	triangleRiseEnd  = 1.0   // end of the first rising quarter
	triangleFallEnd  = 3.0   // end of the falling half
	sawtoothSlope    = -2.0  // sawtooth falls from +1 to -1 per cycle
	squareHigh       = 1.0   // square level while inside the duty cycle
	squareLow        = -1.0  // square level for the rest of the cycle
)
