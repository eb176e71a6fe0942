package main

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	chatbot "github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/config"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/database"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

var urlPattern = regexp.MustCompile(`https://\S+`)

// citingCompleter stands in for a hosted model: it repeats the first line of
// the first context chunk and cites its source.
func citingCompleter() llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, prompt llm.Prompt) (string, error) {
		url := urlPattern.FindString(prompt.User)
		if url == "" {
			return "", llm.ErrEmptyCompletion
		}
		lines := strings.Split(prompt.User, "\n")
		answer := "Here is what I found."
		for i, line := range lines {
			if strings.Contains(line, url) && i+1 < len(lines) {
				answer = strings.TrimSpace(lines[i+1])
				break
			}
		}
		return fmt.Sprintf("%s\nSource: %s", answer, url), nil
	})
}

func courses() []model.CourseData {
	analyst := model.CourseData{SourceURL: "https://nextleap.app/course/data-analyst-course"}
	analyst.Cohort.CohortName = "Data Analyst Fellowship"
	analyst.Cohort.CohortDescription = "Learn SQL, Excel, Tableau and Python."
	analyst.Batch.BatchStartDate = "15 Jan 2026"
	analyst.Batch.Cost = "40000"
	analyst.Batch.CourseType = "Live online"
	analyst.PaymentOptions.EMIOptions = []string{"₹3,333/month for 12 months"}
	analyst.Curriculum.Curriculum = []string{"SQL fundamentals", "Dashboards with Tableau"}
	analyst.Placements.PlacementText = "Placement support with 300+ hiring partners."

	design := model.CourseData{SourceURL: "https://nextleap.app/course/ui-ux-design-course"}
	design.Cohort.CohortName = "UI UX Design Fellowship"
	design.Cohort.CohortDescription = "Design real products with Figma."
	design.Batch.Cost = "45000"
	design.Batch.CourseType = "Live online"
	design.Curriculum.Curriculum = []string{"Figma basics", "User research"}
	design.MentorsInstructors.Mentors = []string{"Priya Nair"}

	return []model.CourseData{analyst, design}
}

func main() {
	// Start test PostgreSQL and Redis containers
	pgTeardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer pgTeardown(context.Background())

	redisTeardown, redisAddr, err := helper.MustStartRedisContainer()
	if err != nil {
		log.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisTeardown(context.Background())

	cfg := config.Default()
	cfg.Database = helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}
	cfg.Session.Backend = config.SessionRedis
	cfg.Redis.Addr = redisAddr

	ctx := context.Background()
	bot, err := chatbot.NewChatbot(ctx, cfg, chatbot.WithCompleter(citingCompleter()))
	if err != nil {
		log.Fatalf("Failed to create chatbot: %v", err)
	}
	defer bot.Close()

	fmt.Println("=== Ingesting Courses ===")
	report, err := bot.IngestCourses(ctx, courses(), true)
	if err != nil {
		log.Fatalf("Failed to ingest courses: %v", err)
	}
	fmt.Printf("%d courses, %d chunks\n", report.Courses, report.Chunks)
	for _, issue := range report.Issues {
		fmt.Printf("  issue: %s\n", issue)
	}

	// 1. Conversation with course continuity and a topic switch
	fmt.Println("\n=== 1. Conversation ===")
	session := "advanced_example"
	for _, question := range []string{
		"Tell me about the Data Analyst course",
		"What are the placements like?",
		"Who mentors the UI UX course?",
		"How much does it cost?",
	} {
		printResult(question, bot.HandleQuery(ctx, question, session))
	}

	history, err := bot.Sessions.History(ctx, session)
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}
	fmt.Printf("\nStored %d turns in Redis\n", len(history))

	// 2. Clearing the conversation drops the course context
	fmt.Println("\n=== 2. Clear Session ===")
	if err := bot.ClearSession(ctx, session); err != nil {
		log.Fatalf("Failed to clear session: %v", err)
	}
	printResult("How much does it cost?", bot.HandleQuery(ctx, "How much does it cost?", session))

	// 3. A malformed session id is replaced by a fresh one
	fmt.Println("\n=== 3. Malformed Session ID ===")
	result := bot.HandleQuery(ctx, "Is there an EMI option?", "not a valid id!")
	fmt.Printf("Answered in session %s\n", result.SessionID)

	// 4. Demonstrate index type switching
	fmt.Println("\n=== 4. Changing Index Type ===")
	fmt.Println("Switching to IVFFlat index...")
	err = bot.ChangeIndexType(ctx, database.IndexOptions{Type: database.IndexTypeIVFFlat, Lists: 10})
	if err != nil {
		log.Printf("Warning: Index change failed (this is okay for small datasets): %v", err)
	} else {
		fmt.Println("Successfully switched to IVFFlat index")
	}

	fmt.Println("Switching back to HNSW index...")
	err = bot.ChangeIndexType(ctx, database.IndexOptions{Type: database.IndexTypeHNSW, M: 16, EfConstruction: 64})
	if err != nil {
		log.Printf("Warning: Index change failed: %v", err)
	} else {
		fmt.Println("Successfully switched to HNSW index")
	}

	count, err := bot.KnowledgeBaseChunks(ctx)
	if err != nil {
		log.Fatalf("Failed to count chunks: %v", err)
	}
	fmt.Printf("\nKnowledge base holds %d chunks\n", count)
	fmt.Println("\nAdvanced example completed successfully!")
}

func printResult(question string, result model.QueryResult) {
	fmt.Printf("\nQ: %s\n", question)
	fmt.Printf("A: %s\n", result.Answer)
	if result.HasSource() {
		fmt.Printf("Source: %s\n", result.SourceURL)
	}
	fmt.Printf("Fallback: %t\n", result.UsedFallback)
}
