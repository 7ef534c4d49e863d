package prop

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/router"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// flagName is the insert flag of a schema field
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

var (
	insertCmd = &cobra.Command{
		Use:   "insert",
		Short: "Inserts a new property",
		Long: `Inserts a new property. The fields are given as flags or as one JSON object with --json.
All problems with the input are reported at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := insertInput(cmd)
			if err != nil {
				return err
			}

			out, err := propRouter.Insert(cmd.Context(), fields)
			if err != nil {
				return explain(err)
			}

			fmt.Printf("inserted %s (primary=%s, replica=%s)\n", out.CustomID, out.Primary, out.Replica)
			if !out.ReplicaWritten {
				fmt.Printf("warning: replica copy on %s was not written: %v\n", out.Replica, out.ReplicaErr)
			}
			return nil
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Searches properties on all shards",
		Long: `Searches properties on all shards. --custom-id is an exact match and ignores the
other criteria, all other criteria are case-insensitive substring matches combined
with AND (or OR with --any). Shards that do not answer are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := searchInput(cmd)
			if err != nil {
				return err
			}
			return printSearch(cmd, criteria)
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := property.ParseSortOrder(mustString(cmd, "sort"))
			if err != nil {
				return err
			}
			return printSearch(cmd, property.Criteria{SortByPrice: order})
		},
	}

	updateCmd = &cobra.Command{
		Use:   "update [custom_id]",
		Short: "Updates fields of a property on every shard",
		Long: `Updates fields of a property on every shard holding a copy.
Fields are given as --set field=value and are converted to the field's type.
The update fails if any shard could not be reached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, _ := cmd.Flags().GetStringArray("set")
			fields, err := parseAssignments(sets)
			if err != nil {
				return err
			}

			res, err := propRouter.Update(cmd.Context(), args[0], fields)
			if err != nil {
				return explain(err)
			}
			fmt.Printf("updated %s on %s\n", res.CustomID, strings.Join(res.Matched, ", "))
			return nil
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete [custom_id]",
		Short: "Deletes a property from every shard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := propRouter.Delete(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			fmt.Printf("deleted %s from %s\n", res.CustomID, strings.Join(res.Matched, ", "))
			return nil
		},
	}

	placementCmd = &cobra.Command{
		Use:   "placement [custom_id]",
		Short: "Prints the primary and replica shard of an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, replica, err := propRouter.Placement(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("custom_id=%s, primary=%s, replica=%s\n", args[0], primary, replica)
			return nil
		},
	}
)

func init() {
	for _, spec := range property.DefaultSchema {
		insertCmd.Flags().String(flagName(spec.Name), "", fmt.Sprintf("value of %s", spec.Name))
	}
	insertCmd.Flags().String("json", "", "the property as JSON object (overrides the field flags)")

	searchCmd.Flags().String("custom-id", "", "exact identity of the property")
	searchCmd.Flags().String("city", "", "substring of the city")
	searchCmd.Flags().String("state", "", "substring of the state")
	searchCmd.Flags().String("type", "", "substring of the type (sale, rent)")
	searchCmd.Flags().String("address", "", "substring of the address")
	searchCmd.Flags().Bool("any", false, "match if any criteria matches instead of all")
	for _, c := range []*cobra.Command{searchCmd, listCmd} {
		c.Flags().String("sort", "", "sort by price (asc, desc)")
		c.Flags().Bool("json", false, "print the records as JSON")
	}

	updateCmd.Flags().StringArray("set", nil, "field=value to change, can be repeated")
	_ = updateCmd.MarkFlagRequired("set")
}

// --------------------------------------------------------------------------
// Input
// --------------------------------------------------------------------------

// insertInput builds the fields of an insert from --json or the field flags.
// Flag values are converted with the schema, unset flags stay absent so the
// validator reports them.
func insertInput(cmd *cobra.Command) (property.Fields, error) {
	if raw := mustString(cmd, "json"); raw != "" {
		fields, err := property.DecodeFields([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid --json: %w", err)
		}
		return fields, nil
	}

	fields := property.Fields{}
	for _, spec := range property.DefaultSchema {
		if !cmd.Flags().Changed(flagName(spec.Name)) {
			continue
		}
		value, err := property.DefaultSchema.Coerce(spec.Name, mustString(cmd, flagName(spec.Name)))
		if err != nil {
			return nil, err
		}
		fields[spec.Name] = value
	}
	return fields, nil
}

func searchInput(cmd *cobra.Command) (property.Criteria, error) {
	order, err := property.ParseSortOrder(mustString(cmd, "sort"))
	if err != nil {
		return property.Criteria{}, err
	}
	anyMatch, _ := cmd.Flags().GetBool("any")
	return property.Criteria{
		CustomID:    mustString(cmd, "custom-id"),
		City:        mustString(cmd, "city"),
		State:       mustString(cmd, "state"),
		Type:        mustString(cmd, "type"),
		Address:     mustString(cmd, "address"),
		Any:         anyMatch,
		SortByPrice: order,
	}, nil
}

// parseAssignments converts field=value pairs into typed update fields
func parseAssignments(sets []string) (property.Fields, error) {
	fields := property.Fields{}
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q (expected field=value)", set)
		}
		name = strings.TrimSpace(name)
		v, err := property.DefaultSchema.Coerce(name, value)
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}
	return fields, nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

func printSearch(cmd *cobra.Command, criteria property.Criteria) error {
	recs, omitted := propRouter.SearchWithReport(cmd.Context(), criteria)
	for _, name := range omitted {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: shard %s did not answer, results may be incomplete\n", name)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	writeRecords(cmd.OutOrStdout(), recs)
	return nil
}

func writeRecords(w io.Writer, recs []property.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no properties found")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(w, "%s  %s, %s, %s %d\n", r.CustomID, r.Address, r.City, r.State, r.ZipCode)
		fmt.Fprintf(w, "    %s  price=%.2f  bedrooms=%d  bathrooms=%g  sqft=%d  listed=%s\n",
			r.Type, r.Price, r.Bedrooms, r.Bathrooms, r.SquareFootage, r.DateListed)
		if r.Description != "" {
			fmt.Fprintf(w, "    %s\n", r.Description)
		}
		if len(r.Images) > 0 {
			fmt.Fprintf(w, "    images: %s\n", strings.Join(r.Images, ", "))
		}
		fmt.Fprintf(w, "    copies: %s\n", strings.Join(r.SourceShards, ", "))
	}
	fmt.Fprintf(w, "%d properties\n", len(recs))
}

// explain turns router errors into messages for the terminal
func explain(err error) error {
	var (
		verr *property.ValidationError
		dup  *router.DuplicateError
		merr *router.MutationError
	)
	switch {
	case errors.As(err, &verr):
		lines := make([]string, len(verr.Violations))
		for i, v := range verr.Violations {
			lines[i] = "  - " + v.String()
		}
		return fmt.Errorf("invalid property:\n%s", strings.Join(lines, "\n"))
	case errors.As(err, &dup):
		return fmt.Errorf("a property with id %s already exists", dup.CustomID)
	case errors.As(err, &merr) && merr.NotFound():
		return fmt.Errorf("no property with id %s found", merr.CustomID)
	case errors.As(err, &merr):
		lines := []string{fmt.Sprintf("%s of %s is incomplete, matched on [%s]", merr.Op, merr.CustomID, strings.Join(merr.Matched, ", "))}
		for _, f := range merr.Failed {
			lines = append(lines, fmt.Sprintf("  - %s: %v", f.Shard, f.Err))
		}
		return errors.New(strings.Join(lines, "\n"))
	default:
		return err
	}
}
