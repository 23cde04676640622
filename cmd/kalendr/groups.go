package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List your calendar groups",
	RunE:  runGroupsList,
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupsCreate,
}

var groupsAddMemberCmd = &cobra.Command{
	Use:   "add-member <group-id> <user-id>",
	Short: "Add a user to a group you belong to",
	Args:  cobra.ExactArgs(2),
	RunE:  runGroupsAddMember,
}

func init() {
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsAddMemberCmd)
}

func runGroupsList(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}

	groups, err := e.db.GroupsForUser(ctx, user)
	if err != nil {
		return fmt.Errorf("fetching groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println("No groups yet. Create one with 'kalendr groups create <name>'.")
		return nil
	}

	fmt.Printf("Found %d groups:\n\n", len(groups))
	for _, g := range groups {
		marker := " "
		if g.ID == e.cfg.Calendar.GroupID {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, g.ID, g.Name)
	}
	return nil
}

func runGroupsCreate(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}

	g, err := e.db.CreateGroup(ctx, args[0], user)
	if err != nil {
		return err
	}
	fmt.Printf("Created group %s (%s)\n", g.Name, g.ID)
	return nil
}

func runGroupsAddMember(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}

	groupID, member := args[0], args[1]
	ok, err := e.db.IsMember(ctx, groupID, user)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not a member of group %s", user, groupID)
	}
	if err := e.db.AddMember(ctx, groupID, member); err != nil {
		return err
	}
	fmt.Printf("Added %s to %s\n", member, groupID)
	return nil
}
