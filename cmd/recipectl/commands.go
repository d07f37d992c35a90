package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/listenupapp/recipe-server/internal/di/providers"
	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/service"
	"github.com/listenupapp/recipe-server/internal/store"
)

func userCmd() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage user accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Email address used to log in"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "Password (at least 8 characters)"},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, cmd, func(ctx context.Context, i do.Injector) error {
						authSvc := do.MustInvoke[*service.AuthService](i)
						u, err := authSvc.CreateUser(ctx, service.CreateUserRequest{
							Email:    cmd.String("email"),
							Password: cmd.String("password"),
							Name:     cmd.String("name"),
						})
						if err != nil {
							return describe(err)
						}
						return writeOutput(cmd.Root().Writer, Format(cmd.Root().String("format")), newUserView(u))
					})
				},
			},
			{
				Name:  "list",
				Usage: "List all users",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, cmd, func(ctx context.Context, i do.Injector) error {
						users, err := do.MustInvoke[*service.AuthService](i).ListUsers(ctx)
						if err != nil {
							return err
						}
						views := make([]userView, len(users))
						for n, u := range users {
							views[n] = newUserView(u)
						}
						return writeOutput(cmd.Root().Writer, Format(cmd.Root().String("format")), views)
					})
				},
			},
		},
	}
}

func tokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue bearer tokens",
		Commands: []*cli.Command{
			{
				Name:        "issue",
				Usage:       "Issue a token for a user",
				Description: "Without --password the token is issued directly, which requires access to the database.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Email of the user"},
					&cli.StringFlag{Name: "password", Usage: "Check this password before issuing"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, cmd, func(ctx context.Context, i do.Injector) error {
						authSvc := do.MustInvoke[*service.AuthService](i)

						var (
							tok *service.TokenResponse
							err error
						)
						if cmd.IsSet("password") {
							tok, err = authSvc.Login(ctx, cmd.String("email"), cmd.String("password"))
						} else {
							tok, err = authSvc.IssueToken(ctx, cmd.String("email"))
						}
						if err != nil {
							return describe(err)
						}
						return writeOutput(cmd.Root().Writer, Format(cmd.Root().String("format")), newTokenView(tok))
					})
				},
			},
		},
	}
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create a demo user with sample recipes",
		Description: `Creates the user if needed and adds any sample recipe the user does not
already have, so running it twice is safe.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Value: "demo@example.com", Usage: "Demo user email"},
			&cli.StringFlag{Name: "password", Value: "demo-password", Usage: "Demo user password"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, cmd, func(ctx context.Context, i do.Injector) error {
				view, err := seed(ctx, i, cmd.String("email"), cmd.String("password"))
				if err != nil {
					return describe(err)
				}
				return writeOutput(cmd.Root().Writer, Format(cmd.Root().String("format")), view)
			})
		},
	}
}

func seed(ctx context.Context, i do.Injector, email, password string) (*seedView, error) {
	authSvc := do.MustInvoke[*service.AuthService](i)
	recipes := do.MustInvoke[*service.RecipeService](i)
	attrs := do.MustInvoke[*providers.AttributeServices](i)

	tok, err := authSvc.Login(ctx, email, password)
	if errors.Is(err, domainerrors.ErrUnauthorized) {
		if _, err = authSvc.CreateUser(ctx, service.CreateUserRequest{Email: email, Password: password, Name: "Demo Cook"}); err != nil {
			return nil, err
		}
		tok, err = authSvc.Login(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}
	userID := tok.User.ID

	existing, err := recipes.ListRecipes(ctx, userID, store.RecipeFilter{})
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Title] = true
	}

	view := &seedView{User: newUserView(tok.User), Token: tok.Token}
	for _, req := range sampleRecipes() {
		if have[req.Title] {
			continue
		}
		r, err := recipes.CreateRecipe(ctx, userID, req)
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", req.Title, err)
		}
		view.Recipes = append(view.Recipes, r.Title)
	}

	tags, err := attrs.Tags.List(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	ingredients, err := attrs.Ingredients.List(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	view.Tags = len(tags)
	view.Ingredients = len(ingredients)
	return view, nil
}

// describe flattens validation details into the message for terminal output.
func describe(err error) error {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return err
	}
	details, ok := domainErr.Details.(domainerrors.FieldErrors)
	if !ok || len(details) == 0 {
		return err
	}
	msg := domainErr.Message
	for _, field := range details.Fields() {
		for _, m := range details[field] {
			msg += fmt.Sprintf("\n  %s: %s", field, m)
		}
	}
	return errors.New(msg)
}

func named(names ...string) []service.NestedAttribute {
	out := make([]service.NestedAttribute, len(names))
	for n, name := range names {
		out[n] = service.NestedAttribute{Name: name}
	}
	return out
}

func sampleRecipes() []service.CreateRecipeRequest {
	return []service.CreateRecipeRequest{
		{
			Title:       "Thai prawn curry",
			TimeMinutes: 30,
			Price:       12.50,
			Link:        "https://example.com/recipes/thai-prawn-curry",
			Description: "Red curry paste, coconut milk and prawns over jasmine rice.",
			Tags:        named("Thai", "Dinner", "Spicy"),
			Ingredients: named("Prawns", "Coconut milk", "Red curry paste", "Jasmine rice"),
		},
		{
			Title:       "Overnight oats",
			TimeMinutes: 5,
			Price:       2.25,
			Tags:        named("Breakfast", "Vegetarian", "Quick"),
			Ingredients: named("Oats", "Milk", "Honey"),
		},
		{
			Title:       "Steak and neep pie",
			TimeMinutes: 150,
			Price:       18.00,
			Description: "Slow-cooked beef with turnip under a puff pastry lid.",
			Tags:        named("Dinner", "Comfort"),
			Ingredients: named("Beef", "Turnip", "Puff pastry", "Onion"),
		},
		{
			Title:       "Tomato soup",
			TimeMinutes: 40,
			Price:       4.75,
			Tags:        named("Lunch", "Vegetarian"),
			Ingredients: named("Tomatoes", "Onion", "Garlic"),
		},
	}
}
