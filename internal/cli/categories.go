package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"storeadmin/internal/client"
	"storeadmin/internal/guard"
	"storeadmin/internal/models"
)

// Categories fetches and lists the categories. Entries the current
// identity may edit are marked with an asterisk.
func (a *App) Categories(ctx context.Context) error {
	if !a.navigate("/categories") {
		return nil
	}

	if err := a.categoryService.Fetch(ctx); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			printlnFn("Session expired. Please log in again.")
			return err
		}
		log.Println(err.Error())
		printlnFn("Showing cached categories")
	}

	items := a.categoryService.All()
	if len(items) == 0 {
		printlnFn("No categories found")
		return nil
	}

	user := a.session.Identity()
	for _, c := range items {
		marker := " "
		if guard.CanMutate(user, &c) {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %4d  %-30s %s", marker, c.ID, c.Name, joinGroups(c.AllowedGroups)))
	}
	return nil
}

// AddCategory creates a category. An empty allowed-group answer stores the
// category as admin-only.
func (a *App) AddCategory(ctx context.Context) error {
	if !a.navigate("/categories") {
		return nil
	}

	name, err := getSimpleText(a.reader, "Enter category name", os.Stdout)
	if err != nil {
		return err
	}

	groupsLine, err := getSimpleText(a.reader, "Allowed groups, comma-separated (empty for admin only)", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.categoryService.Add(ctx, models.Category{
		Name:          name,
		AllowedGroups: parseGroups(groupsLine),
	})
	if err != nil {
		log.Println(err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Created category %d", created.ID))
	return nil
}

// EditCategory updates a category after checking the per-category
// permission for the current identity.
func (a *App) EditCategory(ctx context.Context, args []string) error {
	if !a.navigate("/categories") {
		return nil
	}

	c, ok := a.findEditableCategory(args[0])
	if !ok {
		return nil
	}

	name, err := getTextWithDefault(a.reader, "Name", c.Name, os.Stdout)
	if err != nil {
		return err
	}

	groupsLine, err := getTextWithDefault(a.reader, "Allowed groups, comma-separated", joinGroups(c.AllowedGroups), os.Stdout)
	if err != nil {
		return err
	}

	c.Name = name
	c.AllowedGroups = parseGroups(groupsLine)

	if err := a.categoryService.Update(ctx, *c); err != nil {
		log.Println(err.Error())
		return err
	}
	printlnFn("Updated")
	return nil
}

// DeleteCategory removes a category after the same permission check.
func (a *App) DeleteCategory(ctx context.Context, args []string) error {
	if !a.navigate("/categories") {
		return nil
	}

	c, ok := a.findEditableCategory(args[0])
	if !ok {
		return nil
	}

	if err := a.categoryService.Delete(ctx, c.ID); err != nil {
		log.Println(err.Error())
		return err
	}
	printlnFn("Deleted")
	return nil
}

// findEditableCategory resolves an ID argument against the local collection
// and applies the mutation permission check. The check is advisory; the
// server enforces the same rule.
func (a *App) findEditableCategory(arg string) (*models.Category, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		printlnFn("Invalid category id:", arg)
		return nil, false
	}

	for _, c := range a.categoryService.All() {
		if c.ID == id {
			if !guard.CanMutate(a.session.Identity(), &c) {
				printlnFn("You are not allowed to edit this category")
				return nil, false
			}
			return &c, true
		}
	}
	printlnFn("Category not found:", arg)
	return nil, false
}

func parseGroups(line string) []models.Group {
	var groups []models.Group
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			groups = append(groups, models.Group(part))
		}
	}
	return groups
}
