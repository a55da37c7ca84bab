package params

// Capabilities is the process-wide execution configuration. It is built once
// at startup and only read afterwards; every request copies it into its own
// parameters.
type Capabilities struct {
	ExecutionProviders     []string
	ExecutionProviderCount int
	ExecutionThreadCount   int
	ExecutionQueueCount    int
}

// DefaultCapabilities runs on the CPU with four threads
func DefaultCapabilities() Capabilities {
	return Capabilities{
		ExecutionProviders:     []string{"cpu"},
		ExecutionProviderCount: 1,
		ExecutionThreadCount:   4,
		ExecutionQueueCount:    1,
	}
}

// Defaults returns the full default parameter set for caps. Path keys are left
// empty; the request pipeline fills them in.
func Defaults(caps Capabilities) Params {
	return Params{
		SourcePaths: []string{},

		FaceSelectorMode:      "reference",
		FaceSelectorOrder:     "large-small",
		ReferenceFacePosition: 0,
		ReferenceFaceDistance: 0.6,
		ReferenceFrameNumber:  0,

		FaceDetectorModel:   "yoloface",
		FaceDetectorSize:    "640x640",
		FaceDetectorScore:   0.5,
		FaceDetectorAngles:  []int{0},
		FaceLandmarkerModel: "2dfan4",
		FaceLandmarkerScore: 0.5,
		FaceRecognizerModel: "arcface_inswapper",
		FaceRecognizerScore: 0.9,

		FaceAnalyserDirection: "left-right",

		FaceMaskTypes: []string{"box"},
		FaceMaskRegions: []string{
			"skin", "left-eyebrow", "right-eyebrow", "left-eye", "right-eye",
			"nose", "mouth", "upper-lip", "lower-lip",
		},
		FaceMaskBlur:    0.3,
		FaceMaskPadding: []int{0, 0, 0, 0},

		Processors:            []string{"face_swapper"},
		FaceSwapperModel:      "inswapper_128",
		FaceSwapperPixelBoost: "256x256",
		FaceEnhancerModel:     "gfpgan_1.4",
		FrameEnhancerModel:    "real_esrgan_4x",

		TempFrameFormat:    "png",
		TempFrameQuality:   100,
		KeepTemp:           false,
		KeepFPS:            true,
		SkipAudio:          false,
		OutputImageQuality: 80,
		OutputVideoEncoder: "libx264",
		OutputVideoPreset:  "veryfast",
		OutputVideoQuality: 80,

		ExecutionProviders:     append([]string(nil), caps.ExecutionProviders...),
		ExecutionProviderCount: caps.ExecutionProviderCount,
		ExecutionThreadCount:   caps.ExecutionThreadCount,
		ExecutionQueueCount:    caps.ExecutionQueueCount,

		UILayouts: []string{"default"},
	}
}
