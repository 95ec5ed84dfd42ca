package main

import (
	"context"
	"log"
	"time"

	"campus-gigs/simulator"
)

func main() {
	config := simulator.SimConfig{
		NumClients:       5,
		NumStudents:      15,
		ProjectsPerUser:  2,
		MessageFrequency: 30.0,
		SimulationTime:   5 * time.Minute,
		APIURL:           "http://localhost:8080",
	}

	log.Printf("Starting simulation with configuration:")
	log.Printf("- API URL: %s", config.APIURL)
	log.Printf("- Clients: %d, Students: %d", config.NumClients, config.NumStudents)
	log.Printf("- Projects per client: %d", config.ProjectsPerUser)
	log.Printf("- Message frequency: %.1f messages/minute", config.MessageFrequency)
	log.Printf("- Simulation time: %v", config.SimulationTime)

	sim := simulator.NewSimulator(config)
	ctx, cancel := context.WithTimeout(context.Background(), config.SimulationTime+time.Minute)
	defer cancel()

	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.Printf("Simulation completed. Final metrics:")
	log.Printf("- Total users: %d", metrics.TotalUsers)
	log.Printf("- Projects posted: %d", metrics.TotalProjects)
	log.Printf("- Completed hires: %d", metrics.TotalHires)
	log.Printf("- Chat messages sent: %d", metrics.TotalMessages)
	log.Printf("- Failed requests: %d", metrics.ErrorCount)
	log.Printf("- Average latency: %v", metrics.AvgLatency)
}
