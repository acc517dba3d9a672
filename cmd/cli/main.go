package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hamed0406/servicepoller/internal/domain"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Service name: ")
	name, _ := reader.ReadString('\n')
	fmt.Print("Service URL to poll (e.g., https://example.com): ")
	raw, _ := reader.ReadString('\n')

	in := domain.ServiceInput{Name: name, URL: raw}.Normalize()
	if in.URL != "" && !strings.Contains(in.URL, "://") {
		in.URL = "https://" + in.URL
	}
	if err := in.Validate(); err != nil {
		for field, msg := range domain.FieldErrors(err) {
			fmt.Printf("Invalid %s: %s\n", field, msg)
		}
		os.Exit(2)
	}

	body, _ := json.Marshal(in)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(api+"/v1/services", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}
	var svc domain.Service
	if err := json.NewDecoder(resp.Body).Decode(&svc); err != nil {
		fmt.Println("Added, but could not read the response:", err)
		return
	}
	fmt.Printf("Added #%d %q (%s). Status is %s until the next poll; see GET /v1/services/%d.\n",
		svc.ID, svc.Name, svc.URL, svc.Status, svc.ID)
}
