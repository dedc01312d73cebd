//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/base64"
	"fmt"
	"syscall/js"

	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorBadConfig
	ErrorFingerprintFailed
	ErrorEncodeFailed
	ErrorDecodeFailed
	ErrorCompareFailed
)

// Fingerprints audio samples and returns the serialized sequence.
// Returns: {error: number, data: object | string} where data carries
// {fingerprint: base64, codewords: number, width: number, seconds: number}.
// The third argument is optional and defaults to mono.
func waveprintFingerprint(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected arguments: audioArray, sampleRate[, channels]")
	}

	audioDataJS := args[0]
	sampleRateJS := args[1]

	if audioDataJS.Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray must be an Array or Float64Array")
	}
	if sampleRateJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate must be a number")
	}

	channels := 1
	if len(args) > 2 {
		if args[2].Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, "channels must be a number")
		}
		channels = args[2].Int()
	}

	sampleRate := sampleRateJS.Int()

	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", sampleRate))
	}
	if channels < 1 || channels > 2 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Channels must be 1 (mono) or 2 (stereo), got: %d", channels))
	}

	length := audioDataJS.Length()
	samples := make([]float64, length)
	for i := 0; i < length; i++ {
		val := audioDataJS.Index(i)
		if val.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("audioArray element %d is not a number", i))
		}
		samples[i] = val.Float()
	}

	if channels == 2 {
		samples = stereoToMono(samples)
	}

	cfg := fingerprint.DefaultConfig()
	cfg.SampleRate = sampleRate
	if err := cfg.Validate(); err != nil {
		return makeErrorResponse(ErrorBadConfig, err.Error())
	}

	seq, err := fingerprint.Fingerprint(samples, cfg)
	if err != nil {
		return makeErrorResponse(ErrorFingerprintFailed, fmt.Sprintf("Failed to fingerprint: %v", err))
	}

	blob, err := fingerprint.Marshal(seq, cfg.CodewordWidth)
	if err != nil {
		return makeErrorResponse(ErrorEncodeFailed, fmt.Sprintf("Failed to serialize fingerprint: %v", err))
	}

	data := js.Global().Get("Object").New()
	data.Set("fingerprint", base64.StdEncoding.EncodeToString(blob))
	data.Set("codewords", len(seq))
	data.Set("width", cfg.CodewordWidth)
	data.Set("seconds", float64(len(samples))/float64(sampleRate))

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

// Compares two serialized fingerprints entirely in the browser.
// Returns: {error: number, data: object | string} where data carries
// {score, offset, offsetSeconds, isMatch, noOverlap}.
func waveprintCompare(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: fingerprintA, fingerprintB (base64 strings)")
	}

	if args[0].Type() != js.TypeString || args[1].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "fingerprints must be base64 strings")
	}

	blobA, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, "fingerprintA is not valid base64")
	}
	blobB, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, "fingerprintB is not valid base64")
	}

	seqA, widthA, err := fingerprint.Unmarshal(blobA)
	if err != nil {
		return makeErrorResponse(ErrorDecodeFailed, fmt.Sprintf("fingerprintA: %v", err))
	}
	seqB, widthB, err := fingerprint.Unmarshal(blobB)
	if err != nil {
		return makeErrorResponse(ErrorDecodeFailed, fmt.Sprintf("fingerprintB: %v", err))
	}

	if widthA != widthB {
		return makeErrorResponse(ErrorInvalidArgs,
			fmt.Sprintf("fingerprints carry different codeword widths: %d and %d", widthA, widthB))
	}
	if widthA != fingerprint.DefaultCodewordWidth {
		return makeErrorResponse(ErrorInvalidArgs,
			fmt.Sprintf("unsupported codeword width %d, expected %d", widthA, fingerprint.DefaultCodewordWidth))
	}

	cfg := fingerprint.DefaultConfig()
	res, err := fingerprint.Compare(seqA, seqB, cfg)
	if err != nil {
		return makeErrorResponse(ErrorCompareFailed, fmt.Sprintf("Failed to compare: %v", err))
	}

	data := js.Global().Get("Object").New()
	data.Set("score", res.Score)
	data.Set("offset", res.Offset)
	data.Set("offsetSeconds", res.OffsetSeconds(cfg))
	data.Set("isMatch", res.IsMatch)
	data.Set("noOverlap", res.NoOverlap)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func stereoToMono(stereo []float64) []float64 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}

	monoLength := len(stereo) / 2
	mono := make([]float64, monoLength)

	for i := 0; i < monoLength; i++ {
		left := stereo[i*2]
		right := stereo[i*2+1]
		mono[i] = (left + right) / 2.0
	}

	return mono
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "🔧 waveprint WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("waveprintFingerprint", js.FuncOf(waveprintFingerprint))
	js.Global().Set("waveprintCompare", js.FuncOf(waveprintCompare))

	if !console.IsUndefined() {
		console.Call("log", "📝 waveprintFingerprint and waveprintCompare registered")
	}

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
		if !console.IsUndefined() {
			console.Call("log", "✅ wasmReady event dispatched")
		}
	} else {
		if !console.IsUndefined() {
			console.Call("error", "❌ window object is undefined!")
		}
	}

	if !console.IsUndefined() {
		console.Call("log", "✅ waveprint WASM module loaded and ready")
	}

	<-done
}
