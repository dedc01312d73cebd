package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/jacklion710/waveprint/pkg/logger"
	"github.com/jacklion710/waveprint/pkg/waveprint"
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

// Global flags
var (
	dbPath         string
	tempDir        string
	sampleRate     int
	matchThreshold float64
	maxOffset      int
)

func init() {
	// Pull in a .env file when present so its values can seed flag defaults
	_ = godotenv.Load()

	flag.StringVar(&dbPath, "db", getEnvOrDefault("WAVEPRINT_DB_PATH", "waveprint.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("WAVEPRINT_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", fingerprint.DefaultSampleRate, "Audio sample rate for processing")
	flag.Float64Var(&matchThreshold, "threshold", fingerprint.DefaultMatchThreshold, "Similarity required to call two recordings a match (0-1)")
	flag.IntVar(&maxOffset, "max-offset", 0, "Largest alignment shift to scan in codewords (0 = unbounded)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a new waveprint service with configured options
func createService() (waveprint.Service, error) {
	return waveprint.NewService(
		waveprint.WithDBPath(dbPath),
		waveprint.WithTempDir(tempDir),
		waveprint.WithSampleRate(sampleRate),
		waveprint.WithMatchThreshold(matchThreshold),
		waveprint.WithMaxOffset(maxOffset),
	)
}

func main() {
	// Initialize logger
	log := logger.GetLogger()

	// Print banner
	printBanner()

	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	log.Infof("Executing command: %s", command)

	switch command {
	case "compare":
		handleCompare(args[1:])
	case "fingerprint":
		handleFingerprint(args[1:])
	case "add":
		handleAdd(args[1:])
	case "scan":
		handleScan(args[1:])
	case "match":
		handleMatch(args[1:])
	case "list":
		handleList()
	case "delete":
		handleDelete(args[1:])
	case "stats":
		handleStats()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
__        __   _    __     __ _____  ____   ____   ___  _   _  _____
\ \      / /  / \   \ \   / /| ____||  _ \ |  _ \ |_ _|| \ | ||_   _|
 \ \ /\ / /  / _ \   \ \ / / |  _|  | |_) || |_) | | | |  \| |  | |
  \ V  V /  / ___ \   \ V /  | |___ |  __/ |  _ <  | | | |\  |  | |
   \_/\_/  /_/   \_\   \_/   |_____||_|    |_| \_\|___||_| \_|  |_|

              Audio Fingerprint Comparison Tool
`
	fmt.Println(banner)
}

func handleCompare(args []string) {
	log := logger.GetLogger()

	if len(args) < 2 {
		fmt.Println("Usage: waveprint compare <audio_file_a> <audio_file_b>")
		os.Exit(1)
	}

	pathA, pathB := args[0], args[1]

	fmt.Println("🔧 Initializing service...")
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🔍 Fingerprinting both recordings...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := svc.CompareFiles(ctx, pathA, pathB)
	if err != nil {
		fmt.Printf("\n❌ Comparison failed: %v\n", err)
		log.Errorf("CompareFiles failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Comparison complete!")
	fmt.Println()
	printReport(report, pathA, pathB)
}

func printReport(report *waveprint.Report, pathA, pathB string) {
	if report.Result.NoOverlap {
		fmt.Println("   Verdict: NO OVERLAP")
		fmt.Println("   The fingerprints never overlapped, nothing was compared.")
		fmt.Printf("   Codewords: %d vs %d\n", report.CodewordsA, report.CodewordsB)
		return
	}

	fmt.Printf("   Similarity: %.2f%%\n", report.Result.Score*100)
	fmt.Printf("   Verdict:    %s\n", report.Verdict)
	fmt.Printf("   Offset:     %d codewords (%.3fs)\n", report.Result.Offset, report.OffsetSeconds)
	fmt.Printf("   Codewords:  %d vs %d\n", report.CodewordsA, report.CodewordsB)
	if report.Result.IsMatch {
		fmt.Printf("   🎵 %s and %s match\n", filepath.Base(pathA), filepath.Base(pathB))
	}

	if report.Characteristics != nil {
		fmt.Println("\n📊 Signal characteristics:")
		fmt.Printf("   %-22s %12s %12s %10s\n", "feature", "first", "second", "similar")
		for _, f := range report.Characteristics.Features {
			fmt.Printf("   %-22s %12.4f %12.4f %9.1f%%\n", f.Name, f.A, f.B, f.Similarity*100)
		}
		fmt.Printf("   %-22s %35.1f%%\n", "overall", report.Characteristics.Overall*100)
	}
}

func handleFingerprint(args []string) {
	log := logger.GetLogger()

	// Separate the audio file path from flags
	var audioPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && audioPath == "" {
			audioPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	fpCmd := flag.NewFlagSet("fingerprint", flag.ExitOnError)
	output := fpCmd.String("o", "", "Output path for the serialized fingerprint (default: <input>.wfp)")
	fpCmd.Parse(flagArgs)

	if audioPath == "" {
		fmt.Println("Usage: waveprint fingerprint <audio_file> [-o <output.wfp>]")
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".wfp"
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🔍 Fingerprinting recording...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seq, err := svc.FingerprintFile(ctx, audioPath)
	if err != nil {
		fmt.Printf("\n❌ Fingerprinting failed: %v\n", err)
		log.Errorf("FingerprintFile failed: %v", err)
		os.Exit(1)
	}

	blob, err := fingerprint.Marshal(seq, fingerprint.DefaultCodewordWidth)
	if err != nil {
		fmt.Printf("\n❌ Serialization failed: %v\n", err)
		log.Errorf("Marshal failed: %v", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, blob, 0o644); err != nil {
		fmt.Printf("\n❌ Failed to write %s: %v\n", outPath, err)
		log.Errorf("WriteFile failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Fingerprint written!")
	fmt.Printf("   File:      %s\n", outPath)
	fmt.Printf("   Codewords: %d\n", len(seq))
	fmt.Printf("   Size:      %s\n", humanize.Bytes(uint64(len(blob))))
	log.Infof("Wrote %d codewords to %s", len(seq), outPath)
}

func handleAdd(args []string) {
	log := logger.GetLogger()

	// Separate the audio file path from flags
	var audioPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && audioPath == "" {
			audioPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	name := addCmd.String("name", "", "Clip name (defaults to audio tags, then the file name)")
	addCmd.Parse(flagArgs)

	if audioPath == "" {
		fmt.Println("Usage: waveprint add <audio_file> [--name <name>]")
		os.Exit(1)
	}

	fmt.Println("🔧 Initializing service...")
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🎵 Processing audio file...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	clipID, err := svc.AddClip(ctx, audioPath, *name)
	if err != nil {
		fmt.Printf("\n❌ Failed to add clip: %v\n", err)
		log.Errorf("AddClip failed: %v", err)
		os.Exit(1)
	}

	clip, err := svc.GetClipByID(clipID)
	if err != nil {
		fmt.Printf("\n❌ Failed to read back clip: %v\n", err)
		log.Errorf("GetClipByID failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Successfully registered clip!")
	fmt.Printf("   ID:        %s\n", clip.ID)
	fmt.Printf("   Name:      %s\n", clip.Name)
	fmt.Printf("   Duration:  %s\n", formatDuration(clip.DurationMs))
	fmt.Printf("   Codewords: %d\n", clip.Codewords)
	log.Infof("Registered clip %s (%s)", clip.ID, clip.Name)
}

func handleScan(args []string) {
	log := logger.GetLogger()

	var root string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && root == "" {
			root = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	scanCmd := flag.NewFlagSet("scan", flag.ExitOnError)
	workers := scanCmd.Int("workers", 0, "Concurrent fingerprint workers (default: NumCPU-1)")
	scanCmd.Parse(flagArgs)

	if root == "" {
		fmt.Println("Usage: waveprint scan <directory> [--workers <n>]")
		os.Exit(1)
	}

	files, err := collectAudioFiles(root)
	if err != nil {
		fmt.Printf("❌ Failed to scan %s: %v\n", root, err)
		log.Errorf("collectAudioFiles failed: %v", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("📭 No audio files found under %s\n", root)
		return
	}

	fmt.Printf("🔧 Registering %d audio files from %s\n\n", len(files), root)
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	// Progress bar
	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(files)),
		mpb.PrependDecorators(
			decor.Name("Indexing: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)

	// Concurrency
	w := *workers
	if w <= 0 {
		w = runtime.NumCPU() - 1
		if w < 2 {
			w = 2
		}
	}

	type result struct {
		path string
		err  error
	}

	jobs := make(chan string, len(files))
	results := make(chan result, len(files))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < w; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				_, err := svc.AddClip(ctx, path, "")
				results <- result{path: path, err: err}
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []result
	for r := range results {
		bar.Increment()
		if r.err != nil {
			failed = append(failed, r)
		}
	}
	p.Wait()

	fmt.Printf("\n✅ Registered %d clip(s)\n", len(files)-len(failed))
	if len(failed) > 0 {
		fmt.Printf("⚠️  %d file(s) failed:\n", len(failed))
		for _, r := range failed {
			fmt.Printf("   %s: %v\n", r.path, r.err)
			log.Warnf("Scan skipped %s: %v", r.path, r.err)
		}
	}
	log.Infof("Scan finished: %d ok, %d failed", len(files)-len(failed), len(failed))
}

// collectAudioFiles walks root and returns every file with a known audio extension.
func collectAudioFiles(root string) ([]string, error) {
	exts := map[string]bool{
		".wav": true, ".mp3": true, ".m4a": true,
		".flac": true, ".ogg": true, ".aac": true,
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func handleMatch(args []string) {
	log := logger.GetLogger()

	if len(args) < 1 {
		fmt.Println("Usage: waveprint match <audio_file>")
		os.Exit(1)
	}

	audioPath := args[0]

	fmt.Println("🔧 Initializing service...")
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🔍 Scoring the query against every registered clip...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := svc.MatchClip(ctx, audioPath)
	if err != nil {
		fmt.Printf("\n❌ Failed to match: %v\n", err)
		log.Errorf("MatchClip failed: %v", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("\n📭 No clips registered yet")
		return
	}

	fmt.Printf("\n✅ Scored %d clip(s)\n", len(results))
	fmt.Println("\n🎵 Best alignments:")
	fmt.Println()

	maxDisplay := 10
	if len(results) < maxDisplay {
		maxDisplay = len(results)
	}

	for i := 0; i < maxDisplay; i++ {
		r := results[i]
		marker := " "
		if r.IsMatch {
			marker = "✓"
		}
		fmt.Printf("%s %d. %s\n", marker, i+1, r.Name)
		if r.NoOverlap {
			fmt.Println("     no overlap with the query")
		} else {
			fmt.Printf("     Similarity: %.2f%% | Verdict: %s | Offset: %.3fs\n",
				r.Score*100, r.Verdict, r.OffsetSeconds)
		}
		fmt.Println()
	}

	if len(results) > maxDisplay {
		fmt.Printf("... and %d more clips\n", len(results)-maxDisplay)
	}
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	clips, err := svc.ListClips()
	if err != nil {
		fmt.Printf("❌ Failed to list clips: %v\n", err)
		log.Errorf("ListClips failed: %v", err)
		os.Exit(1)
	}

	if len(clips) == 0 {
		fmt.Println("📭 No clips registered")
		return
	}

	fmt.Printf("📚 Found %d clip(s):\n\n", len(clips))
	for i, clip := range clips {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, clip.Name, clip.ID)
		fmt.Printf("   Duration: %s | Codewords: %d | Rate: %d Hz\n",
			formatDuration(clip.DurationMs), clip.Codewords, clip.SampleRate)
		if clip.SourcePath != "" {
			fmt.Printf("   Source: %s\n", clip.SourcePath)
		}
		fmt.Println()
	}
	log.Infof("Listed %d clips", len(clips))
}

func handleDelete(args []string) {
	log := logger.GetLogger()

	if len(args) < 1 {
		fmt.Println("Usage: waveprint delete <clip_id>")
		os.Exit(1)
	}

	clipID := args[0]

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	// Get clip info before deletion
	clip, err := svc.GetClipByID(clipID)
	if err != nil {
		fmt.Printf("❌ Clip not found (ID: %s)\n", clipID)
		log.Warnf("Clip %s not found: %v", clipID, err)
		os.Exit(1)
	}

	if err := svc.DeleteClip(clipID); err != nil {
		fmt.Printf("❌ Failed to delete clip: %v\n", err)
		log.Errorf("DeleteClip failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Successfully deleted clip:")
	fmt.Printf("   ID:   %s\n", clip.ID)
	fmt.Printf("   Name: %s\n", clip.Name)
	log.Infof("Deleted clip %s (%s)", clip.ID, clip.Name)
}

func handleStats() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	stats, err := svc.Stats()
	if err != nil {
		fmt.Printf("❌ Failed to read stats: %v\n", err)
		log.Errorf("Stats failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("📊 Registry stats:")
	fmt.Printf("   Database:     %s\n", dbPath)
	fmt.Printf("   Clips:        %s\n", humanize.Comma(stats.Clips))
	fmt.Printf("   Fingerprints: %s\n", humanize.Bytes(uint64(stats.FingerprintBytes)))
	fmt.Printf("   Sample rate:  %d Hz\n", sampleRate)
	fmt.Printf("   Threshold:    %.2f\n", matchThreshold)
}

func formatDuration(durationMs int) string {
	seconds := durationMs / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func printUsage() {
	fmt.Println("waveprint - Audio Fingerprint Comparison CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>         Path to SQLite database (env: WAVEPRINT_DB_PATH, default: waveprint.sqlite3)")
	fmt.Println("  --temp <dir>        Temporary directory for audio conversion (env: WAVEPRINT_TEMP_DIR, default: /tmp)")
	fmt.Println("  --rate <hz>         Audio sample rate (default: 11025)")
	fmt.Println("  --threshold <0-1>   Similarity required for a match (default: 0.80)")
	fmt.Println("  --max-offset <n>    Largest alignment shift to scan, in codewords (default: unbounded)")
	fmt.Println("\nUsage:")
	fmt.Println("  waveprint [global-options] compare <audio_a> <audio_b>")
	fmt.Println("  waveprint [global-options] fingerprint <audio_file> [-o <output.wfp>]")
	fmt.Println("  waveprint [global-options] add <audio_file> [--name <name>]")
	fmt.Println("  waveprint [global-options] scan <directory> [--workers <n>]")
	fmt.Println("  waveprint [global-options] match <audio_file>")
	fmt.Println("  waveprint [global-options] list")
	fmt.Println("  waveprint [global-options] delete <clip_id>")
	fmt.Println("  waveprint [global-options] stats")
	fmt.Println("\nExamples:")
	fmt.Println("  # Compare two recordings directly")
	fmt.Println("  waveprint compare master.wav radio_capture.mp3")
	fmt.Println()
	fmt.Println("  # Register a directory of reference clips, then identify a capture")
	fmt.Println("  waveprint --db refs.sqlite3 scan ./library")
	fmt.Println("  waveprint --db refs.sqlite3 match capture.wav")
	fmt.Println()
	fmt.Println("  # Tighten the match threshold")
	fmt.Println("  waveprint --threshold 0.9 compare a.wav b.wav")
}
