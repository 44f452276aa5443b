package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"spiritclash/internal/battle"
	"spiritclash/internal/config"
	"spiritclash/internal/encounter"
	"spiritclash/internal/logging"
	"spiritclash/internal/sim"
	"spiritclash/internal/util"
)

func main() {
	var cfgDir, out, partySpec, encounterID string
	var seed int64
	var n, workers int
	var saveLog bool
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.StringVar(&partySpec, "party", "ember:5,sprout:5,brook:5", "party as spirit:level,...")
	flag.StringVar(&encounterID, "encounter", "", "fixed encounter id (default: pick by party level)")
	flag.Int64Var(&seed, "seed", 12345, "seed")
	flag.IntVar(&n, "n", 1, "number of simulations")
	flag.IntVar(&workers, "workers", 8, "parallel workers in batch mode")
	flag.BoolVar(&saveLog, "log", true, "save battle log and events when n==1")
	flag.Parse()

	bundle, err := config.LoadAll(cfgDir)
	if err != nil {
		logging.Fatal("load catalogs", err, logging.Fields{"dir": cfgDir})
	}
	catalog, err := battle.NewCatalog(bundle)
	if err != nil {
		logging.Fatal("build catalog", err, nil)
	}
	party, err := sim.ParseParty(partySpec)
	if err != nil {
		logging.Fatal("parse party", err, logging.Fields{"party": partySpec})
	}

	if n <= 1 {
		runner := sim.NewRunner(catalog, encounter.NewSource(bundle.Encounters, util.New(seed)))
		res, err := runner.Run(sim.Options{Party: party, EncounterID: encounterID, Seed: seed, Record: saveLog})
		if err != nil {
			logging.Fatal("run battle", err, nil)
		}
		if err := os.WriteFile(out, sim.MarshalPretty(res), 0644); err != nil {
			logging.Fatal("write result", err, logging.Fields{"out": out})
		}
		fmt.Printf("Single simsvc finished. Win=%v, Turns=%d, Encounter=%s -> %s\n", res.Win, res.Turns, res.Encounter, out)
		return
	}

	// Per-battle lines would drown the summary.
	logging.SetOutput(io.Discard)

	type stat struct {
		Win        int
		Unfinished int
		SumTurns   int
		BySkill    map[string]int
		ByEnc      map[string]int
		Errors     int
	}
	st := stat{BySkill: map[string]int{}, ByEnc: map[string]int{}}
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				runSeed := seed + int64(workerID)*7919 + int64(i)
				runner := sim.NewRunner(catalog, encounter.NewSource(bundle.Encounters, util.New(runSeed)))
				res, err := runner.Run(sim.Options{Party: party, EncounterID: encounterID, Seed: runSeed})

				mu.Lock()
				if err != nil {
					st.Errors++
					mu.Unlock()
					continue
				}
				if res.Win {
					st.Win++
				}
				if !res.Finished {
					st.Unfinished++
				}
				st.SumTurns += res.Turns
				st.ByEnc[res.Encounter]++
				for k, v := range res.DamageBySkill {
					st.BySkill[k] += v
				}
				mu.Unlock()
			}
		}(w)
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	totalDmg := 0
	for _, v := range st.BySkill {
		totalDmg += v
	}
	bySkill := map[string]any{}
	skills := make([]string, 0, len(st.BySkill))
	for k := range st.BySkill {
		skills = append(skills, k)
	}
	sort.Strings(skills)
	for _, k := range skills {
		share := 0.0
		if totalDmg > 0 {
			share = float64(st.BySkill[k]) / float64(totalDmg)
		}
		bySkill[k] = map[string]any{"total": st.BySkill[k], "ratio": share}
	}

	played := n - st.Errors
	avg := func(v int) float64 {
		if played == 0 {
			return 0
		}
		return float64(v) / float64(played)
	}
	summary := map[string]any{
		"runs":         n,
		"errors":       st.Errors,
		"unfinished":   st.Unfinished,
		"win_rate":     avg(st.Win),
		"avg_turns":    avg(st.SumTurns),
		"total_damage": totalDmg,
		"by_skill":     bySkill,
		"encounters":   st.ByEnc,
	}
	if err := os.WriteFile(out, sim.MarshalPretty(summary), 0644); err != nil {
		logging.SetOutput(os.Stderr)
		logging.Fatal("write summary", err, logging.Fields{"out": out})
	}
	fmt.Printf("Batch %d done -> %s\n", n, filepath.Base(out))
}
