package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	apiURL string
	token  string
)

func main() {
	root := &cobra.Command{
		Use:   "librarylend",
		Short: "Command line client for the LibraryLend API",
	}
	root.PersistentFlags().StringVar(&apiURL, "api", envOr("LIBRARYLEND_API", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("LIBRARYLEND_TOKEN"), "bearer token for mutating commands")

	root.AddCommand(
		newRegisterBookCmd(),
		newRegisterBorrowerCmd(),
		newListBooksCmd(),
		newListBorrowersCmd(),
		newBorrowCmd(),
		newReturnCmd(),
		newLoansCmd(),
		newLoginCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRegisterBookCmd() *cobra.Command {
	var isbn, title, author string
	cmd := &cobra.Command{
		Use:   "register-book",
		Short: "Register a new book copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := postJSON("/api/v1/book/register", map[string]string{
				"isbn":   isbn,
				"title":  title,
				"author": author,
			})
			if err != nil {
				return err
			}
			var book struct {
				ID    int64  `json:"id"`
				ISBN  string `json:"isbn"`
				Title string `json:"title"`
			}
			if err := json.Unmarshal(body, &book); err != nil {
				return err
			}
			fmt.Printf("Registered book %d: %s (%s)\n", book.ID, book.Title, book.ISBN)
			return nil
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN number")
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.MarkFlagRequired("isbn")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("author")
	return cmd
}

func newRegisterBorrowerCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register-borrower",
		Short: "Register a new borrower",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := postJSON("/api/v1/borrower/register", map[string]string{
				"name":  name,
				"email": email,
			})
			if err != nil {
				return err
			}
			var borrower struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			}
			if err := json.Unmarshal(body, &borrower); err != nil {
				return err
			}
			fmt.Printf("Registered borrower %d: %s\n", borrower.ID, borrower.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "borrower name")
	cmd.Flags().StringVar(&email, "email", "", "borrower email")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

type bookRow struct {
	ID       int64  `json:"id"`
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Borrowed bool   `json:"borrowed"`
}

func newListBooksCmd() *cobra.Command {
	var availableOnly bool
	var pageNo, pageSize int
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/book"
			if availableOnly {
				path = "/api/v1/book/available"
			}
			body, err := get(fmt.Sprintf("%s?pageNo=%d&pageSize=%d", path, pageNo, pageSize))
			if err != nil {
				return err
			}
			var page struct {
				Content       []bookRow `json:"content"`
				TotalElements int64     `json:"totalElements"`
				PageNo        int       `json:"pageNo"`
				TotalPages    int       `json:"totalPages"`
			}
			if err := json.Unmarshal(body, &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tISBN\tTITLE\tAUTHOR\tSTATUS")
			for _, b := range page.Content {
				status := "available"
				if b.Borrowed {
					status = "borrowed"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.ISBN, b.Title, b.Author, status)
			}
			w.Flush()
			fmt.Printf("page %d of %d (%d books total)\n", page.PageNo+1, page.TotalPages, page.TotalElements)
			return nil
		},
	}
	cmd.Flags().BoolVar(&availableOnly, "available", false, "show only books not on loan")
	cmd.Flags().IntVar(&pageNo, "page", 0, "zero-indexed page number")
	cmd.Flags().IntVar(&pageSize, "size", 10, "page size")
	return cmd
}

func newListBorrowersCmd() *cobra.Command {
	var pageNo, pageSize int
	cmd := &cobra.Command{
		Use:   "borrowers",
		Short: "List registered borrowers",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := get(fmt.Sprintf("/api/v1/borrower?pageNo=%d&pageSize=%d", pageNo, pageSize))
			if err != nil {
				return err
			}
			var page struct {
				Content []struct {
					ID    int64  `json:"id"`
					Name  string `json:"name"`
					Email string `json:"email"`
				} `json:"content"`
				TotalElements int64 `json:"totalElements"`
			}
			if err := json.Unmarshal(body, &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, b := range page.Content {
				fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.Name, b.Email)
			}
			w.Flush()
			fmt.Printf("%d borrowers total\n", page.TotalElements)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageNo, "page", 0, "zero-indexed page number")
	cmd.Flags().IntVar(&pageSize, "size", 10, "page size")
	return cmd
}

func newBorrowCmd() *cobra.Command {
	var bookID, borrowerID int64
	cmd := &cobra.Command{
		Use:   "borrow",
		Short: "Borrow a book for a borrower",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := postJSON(fmt.Sprintf("/api/v1/borrowing/%d/borrow?borrowerId=%d", bookID, borrowerID), nil)
			if err != nil {
				return err
			}
			var info struct {
				ID         int64     `json:"id"`
				BorrowDate time.Time `json:"borrowDate"`
			}
			if err := json.Unmarshal(body, &info); err != nil {
				return err
			}
			fmt.Printf("Borrowing %d opened at %s\n", info.ID, info.BorrowDate.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().Int64Var(&bookID, "book", 0, "book ID")
	cmd.Flags().Int64Var(&borrowerID, "borrower", 0, "borrower ID")
	cmd.MarkFlagRequired("book")
	cmd.MarkFlagRequired("borrower")
	return cmd
}

func newReturnCmd() *cobra.Command {
	var borrowingID int64
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Return a borrowed book",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := putJSON(fmt.Sprintf("/api/v1/borrowing/%d/return", borrowingID), nil)
			if err != nil {
				return err
			}
			var info struct {
				ID         int64      `json:"id"`
				ReturnDate *time.Time `json:"returnDate"`
			}
			if err := json.Unmarshal(body, &info); err != nil {
				return err
			}
			returned := "unknown"
			if info.ReturnDate != nil {
				returned = info.ReturnDate.Format(time.RFC3339)
			}
			fmt.Printf("Borrowing %d closed at %s\n", info.ID, returned)
			return nil
		},
	}
	cmd.Flags().Int64Var(&borrowingID, "borrowing", 0, "borrowing ID")
	cmd.MarkFlagRequired("borrowing")
	return cmd
}

func newLoansCmd() *cobra.Command {
	var borrowerID int64
	var pageNo, pageSize int
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List a borrower's loans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := get(fmt.Sprintf("/api/v1/borrowing/borrower/%d?pageNo=%d&pageSize=%d", borrowerID, pageNo, pageSize))
			if err != nil {
				return err
			}
			var page struct {
				Content []struct {
					ID   int64 `json:"id"`
					Book struct {
						Title string `json:"title"`
					} `json:"bookInfo"`
					BorrowDate time.Time  `json:"borrowDate"`
					ReturnDate *time.Time `json:"returnDate"`
					IsBorrowed bool       `json:"isBorrowed"`
				} `json:"content"`
				TotalElements int64 `json:"totalElements"`
			}
			if err := json.Unmarshal(body, &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tBORROWED\tRETURNED")
			for _, loan := range page.Content {
				returned := "-"
				if loan.ReturnDate != nil {
					returned = loan.ReturnDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", loan.ID, loan.Book.Title, loan.BorrowDate.Format("2006-01-02"), returned)
			}
			w.Flush()
			fmt.Printf("%d loans total\n", page.TotalElements)
			return nil
		},
	}
	cmd.Flags().Int64Var(&borrowerID, "borrower", 0, "borrower ID")
	cmd.Flags().IntVar(&pageNo, "page", 0, "zero-indexed page number")
	cmd.Flags().IntVar(&pageSize, "size", 10, "page size")
	cmd.MarkFlagRequired("borrower")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a librarian and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := postJSON("/api/v1/auth/login", map[string]string{
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}
			var result struct {
				Token     string `json:"token"`
				ExpiresIn int    `json:"expiresIn"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return err
			}
			fmt.Printf("export LIBRARYLEND_TOKEN=%s\n", result.Token)
			fmt.Fprintf(os.Stderr, "token expires in %ds\n", result.ExpiresIn)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "librarian email")
	cmd.Flags().StringVar(&password, "password", "", "librarian password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func get(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	return do(req)
}

func postJSON(path string, payload any) ([]byte, error) {
	return sendJSON(http.MethodPost, path, payload)
}

func putJSON(path string, payload any) ([]byte, error) {
	return sendJSON(http.MethodPut, path, payload)
}

func sendJSON(method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, apiURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return do(req)
}

func do(req *http.Request) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return data, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
