// Command seed populates a running API instance with demo courses, staff,
// and a timetable, then triggers one generation run. Useful for local
// development and smoke testing.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type course struct {
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	HoursPerWeek  int      `json:"hoursPerWeek"`
	PreferredDays []string `json:"preferredDays,omitempty"`
}

type staff struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	AvailableDays        []string `json:"availableDays,omitempty"`
	AvailableHoursPerDay int      `json:"availableHoursPerDay,omitempty"`
	CourseIDs            []string `json:"courseIds,omitempty"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	courses := []course{
		{Name: "Mathematics", Code: "MATH101", HoursPerWeek: 5, PreferredDays: []string{"Monday", "Wednesday"}},
		{Name: "Physics", Code: "PHY101", HoursPerWeek: 4},
		{Name: "Chemistry", Code: "CHEM101", HoursPerWeek: 4, PreferredDays: []string{"Friday"}},
		{Name: "English", Code: "ENG101", HoursPerWeek: 3},
	}

	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		id, err := create(client, base+"/courses", c)
		if err != nil {
			log.Fatalf("seed course %s: %v", c.Code, err)
		}
		courseIDs = append(courseIDs, id)
		fmt.Printf("course %s -> %s\n", c.Code, id)
	}

	members := []staff{
		{Name: "Alice Mercer", Email: "alice@example.edu", CourseIDs: courseIDs[:2]},
		{Name: "Bob Tanaka", Email: "bob@example.edu", AvailableDays: []string{"Monday", "Tuesday", "Wednesday"}, AvailableHoursPerDay: 4, CourseIDs: courseIDs[1:3]},
		{Name: "Carol Singh", Email: "carol@example.edu", CourseIDs: courseIDs[3:]},
	}
	for _, m := range members {
		id, err := create(client, base+"/staff", m)
		if err != nil {
			log.Fatalf("seed staff %s: %v", m.Email, err)
		}
		fmt.Printf("staff %s -> %s\n", m.Email, id)
	}

	timetableID, err := create(client, base+"/timetables", map[string]interface{}{
		"name":        "Demo Week",
		"hoursPerDay": 6,
	})
	if err != nil {
		log.Fatalf("seed timetable: %v", err)
	}
	fmt.Printf("timetable -> %s\n", timetableID)

	resp, err := client.Post(base+"/timetables/"+timetableID+"/generate", "application/json", nil)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("generate returned %d: %s", resp.StatusCode, body)
	}
	fmt.Println("schedule generated")
}

func create(client *http.Client, url string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	var record struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return "", err
	}
	return record.ID, nil
}
