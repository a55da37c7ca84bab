// Package params holds the configuration handed to the execution capability
// for one step: the closed Params structure, the per-request Store that
// seeds and overrides it, and the process-wide Capabilities.
package params

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Keys that are derived from the staged files of a request
const (
	KeySourcePaths = "source_paths"
	KeyTargetPath  = "target_path"
	KeyOutputPath  = "output_path"
)

// PathKeys are owned by the request pipeline and never taken from client overlays
var PathKeys = []string{KeySourcePaths, KeyTargetPath, KeyOutputPath}

// Params is the full parameter set of one step. Every named field maps to one
// key of the external pipeline; keys unknown to this build are kept in Extra.
type Params struct {
	SourcePaths []string `json:"source_paths" yaml:"source_paths"`
	TargetPath  string   `json:"target_path" yaml:"target_path"`
	OutputPath  string   `json:"output_path" yaml:"output_path"`

	FaceSelectorMode      string  `json:"face_selector_mode" yaml:"face_selector_mode"`
	FaceSelectorOrder     string  `json:"face_selector_order" yaml:"face_selector_order"`
	ReferenceFacePosition int     `json:"reference_face_position" yaml:"reference_face_position"`
	ReferenceFaceDistance float64 `json:"reference_face_distance" yaml:"reference_face_distance"`
	ReferenceFrameNumber  int     `json:"reference_frame_number" yaml:"reference_frame_number"`

	FaceDetectorModel   string  `json:"face_detector_model" yaml:"face_detector_model"`
	FaceDetectorSize    string  `json:"face_detector_size" yaml:"face_detector_size"`
	FaceDetectorScore   float64 `json:"face_detector_score" yaml:"face_detector_score"`
	FaceDetectorAngles  []int   `json:"face_detector_angles" yaml:"face_detector_angles"`
	FaceLandmarkerModel string  `json:"face_landmarker_model" yaml:"face_landmarker_model"`
	FaceLandmarkerScore float64 `json:"face_landmarker_score" yaml:"face_landmarker_score"`
	FaceRecognizerModel string  `json:"face_recognizer_model" yaml:"face_recognizer_model"`
	FaceRecognizerScore float64 `json:"face_recognizer_score" yaml:"face_recognizer_score"`

	FaceAnalyserDirection string  `json:"face_analyser_direction" yaml:"face_analyser_direction"`
	FaceAnalyserAge       *string `json:"face_analyser_age" yaml:"face_analyser_age"`
	FaceAnalyserGender    *string `json:"face_analyser_gender" yaml:"face_analyser_gender"`

	FaceMaskTypes   []string `json:"face_mask_types" yaml:"face_mask_types"`
	FaceMaskRegions []string `json:"face_mask_regions" yaml:"face_mask_regions"`
	FaceMaskBlur    float64  `json:"face_mask_blur" yaml:"face_mask_blur"`
	FaceMaskPadding []int    `json:"face_mask_padding" yaml:"face_mask_padding"`

	Processors            []string `json:"processors" yaml:"processors"`
	FaceSwapperModel      string   `json:"face_swapper_model" yaml:"face_swapper_model"`
	FaceSwapperPixelBoost string   `json:"face_swapper_pixel_boost" yaml:"face_swapper_pixel_boost"`
	FaceEnhancerModel     string   `json:"face_enhancer_model" yaml:"face_enhancer_model"`
	FrameEnhancerModel    string   `json:"frame_enhancer_model" yaml:"frame_enhancer_model"`

	TempFrameFormat    string `json:"temp_frame_format" yaml:"temp_frame_format"`
	TempFrameQuality   int    `json:"temp_frame_quality" yaml:"temp_frame_quality"`
	KeepTemp           bool   `json:"keep_temp" yaml:"keep_temp"`
	KeepFPS            bool   `json:"keep_fps" yaml:"keep_fps"`
	SkipAudio          bool   `json:"skip_audio" yaml:"skip_audio"`
	OutputImageQuality int    `json:"output_image_quality" yaml:"output_image_quality"`
	OutputVideoEncoder string `json:"output_video_encoder" yaml:"output_video_encoder"`
	OutputVideoPreset  string `json:"output_video_preset" yaml:"output_video_preset"`
	OutputVideoQuality int    `json:"output_video_quality" yaml:"output_video_quality"`

	ExecutionProviders     []string `json:"execution_providers" yaml:"execution_providers"`
	ExecutionProviderCount int      `json:"execution_provider_count" yaml:"execution_provider_count"`
	ExecutionThreadCount   int      `json:"execution_thread_count" yaml:"execution_thread_count"`
	ExecutionQueueCount    int      `json:"execution_queue_count" yaml:"execution_queue_count"`

	UILayouts []string `json:"ui_layouts" yaml:"ui_layouts"`

	// Extra holds keys this build does not know about. They are passed
	// through to the executor untouched.
	Extra map[string]any `json:"-" yaml:"-"`
}

var (
	knownKeys    = jsonKeys(reflect.TypeOf(Params{}), nil)
	nullableKeys = jsonKeys(reflect.TypeOf(Params{}), func(f reflect.StructField) bool {
		return f.Type.Kind() == reflect.Pointer
	})
)

// jsonKeys returns the JSON names of the fields of t accepted by keep
func jsonKeys(t reflect.Type, keep func(reflect.StructField) bool) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if keep != nil && !keep(f) {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

// IsKnownKey reports whether key maps to a named field of Params
func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}

// RequiredKeys returns every named key, sorted. All of them must be present in
// a Store before a job runs.
func RequiredKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items flattens the parameters into a key/value map, including Extra.
// Numbers are float64 and lists are []any, the same shapes a decoded JSON
// overlay has.
func (p Params) Items() (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	items := make(map[string]any, len(knownKeys)+len(p.Extra))
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to flatten params: %w", err)
	}
	for k, v := range p.Extra {
		if IsKnownKey(k) {
			continue
		}
		items[k] = v
	}
	return items, nil
}

// FromItems builds Params from a key/value map. Unknown keys are kept in Extra.
func FromItems(items map[string]any) (Params, error) {
	var p Params
	raw, err := json.Marshal(items)
	if err != nil {
		return p, fmt.Errorf("failed to marshal items: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("failed to decode items: %w", err)
	}
	for k, v := range items {
		if IsKnownKey(k) {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p, nil
}

// Clone returns a deep copy
func (p Params) Clone() Params {
	items, err := p.Items()
	if err != nil {
		return p
	}
	c, err := FromItems(items)
	if err != nil {
		return p
	}
	return c
}

// CheckValue reports whether value can be decoded into the field named by key.
// Null is only accepted for optional fields. Unknown keys accept any value.
func CheckValue(key string, value any) error {
	if !IsKnownKey(key) {
		return nil
	}
	if value == nil {
		if _, ok := nullableKeys[key]; !ok {
			return fmt.Errorf("invalid value for %s: null", key)
		}
		return nil
	}
	raw, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	var decoded Params
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
