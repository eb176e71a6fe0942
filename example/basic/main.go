package main

import (
	"context"
	"fmt"
	"log"

	chatbot "github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/config"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

func sampleCourses() []model.CourseData {
	analyst := model.CourseData{SourceURL: "https://nextleap.app/course/data-analyst-course"}
	analyst.Cohort.CohortName = "Data Analyst Fellowship"
	analyst.Cohort.CohortDescription = "Learn SQL, Excel, Tableau and Python and get placed as a data analyst."
	analyst.Batch.BatchStartDate = "15 Jan 2026"
	analyst.Batch.Cost = "40000"
	analyst.Batch.CourseType = "Live online"
	analyst.PaymentOptions.EMIOptions = []string{"₹3,333/month for 12 months", "₹6,667/month for 6 months"}
	analyst.Curriculum.Curriculum = []string{"SQL fundamentals", "Excel for analysts", "Dashboards with Tableau"}
	analyst.MentorsInstructors.Instructors = []string{"Ankit Sharma"}

	pm := model.CourseData{SourceURL: "https://nextleap.app/course/product-management-course"}
	pm.Cohort.CohortName = "Product Management Fellowship"
	pm.Cohort.CohortDescription = "Become a product manager with live projects and mentorship."
	pm.Batch.Cost = "55000"
	pm.Batch.CourseType = "Live online"
	pm.PaymentOptions.EMIOptions = []string{"₹4,583/month for 12 months"}
	pm.Curriculum.Curriculum = []string{"Product discovery", "Metrics and experimentation"}

	return []model.CourseData{analyst, pm}
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

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
	// Without an API key the answers come from the course data templates.
	cfg.LLM.Provider = config.LLMNone

	ctx := context.Background()
	bot, err := chatbot.NewChatbot(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create chatbot: %v", err)
	}
	defer bot.Close()

	fmt.Println("Ingesting courses...")
	report, err := bot.IngestCourses(ctx, sampleCourses(), true)
	if err != nil {
		log.Fatalf("Failed to ingest courses: %v", err)
	}
	fmt.Printf("Inserted %d courses with %d chunks\n", report.Courses, report.Chunks)
	for _, issue := range report.Issues {
		fmt.Printf("  issue: %s\n", issue)
	}

	// A follow-up question without a course name stays with the previous course.
	questions := []string{
		"What is the fee for the Data Analyst course?",
		"Does it have EMI options?",
		"When does the Product Management batch start?",
	}

	for _, question := range questions {
		result := bot.HandleQuery(ctx, question, "basic_example")
		fmt.Printf("\nQ: %s\n", question)
		fmt.Printf("A: %s\n", result.Answer)
		if result.HasSource() {
			fmt.Printf("Source: %s\n", result.SourceURL)
		}
		fmt.Printf("Fallback: %t\n", result.UsedFallback)
	}

	fmt.Println("\nBasic example completed successfully!")
}
