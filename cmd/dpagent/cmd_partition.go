package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func partitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Partition management operations",
		Long:  "Create, delete, format, resize partitions and manage drive letters",
	}

	cmd.AddCommand(partitionCreateCmd())
	cmd.AddCommand(partitionDeleteCmd())
	cmd.AddCommand(partitionFormatCmd())
	cmd.AddCommand(partitionAssignCmd())
	cmd.AddCommand(partitionRemoveLetterCmd())
	cmd.AddCommand(partitionActiveCmd())
	cmd.AddCommand(partitionExtendCmd())
	cmd.AddCommand(partitionShrinkCmd())

	return cmd
}

func parseIntArg(raw, name string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %q", name, raw)
	}
	return value, nil
}

func partitionCreateCmd() *cobra.Command {
	var sizeMB int64

	cmd := &cobra.Command{
		Use:   "create <disk>",
		Short: "Create a primary partition on a disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/create", map[string]interface{}{
				"disk":    disk,
				"size_mb": sizeMB,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}

	cmd.Flags().Int64VarP(&sizeMB, "size", "s", 0, "Partition size in MB (0 uses all free space)")

	return cmd
}

func partitionDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <disk> <partition>",
		Short: "Delete a partition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			if !yes {
				fmt.Printf("This will destroy all data on disk %d partition %d. Continue? [y/N] ", disk, partition)
				var answer string
				fmt.Scanln(&answer)
				if answer != "y" && answer != "Y" {
					fmt.Println("Aborted")
					return nil
				}
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/delete", map[string]interface{}{
				"disk":      disk,
				"partition": partition,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func partitionFormatCmd() *cobra.Command {
	var (
		filesystem string
		label      string
		full       bool
	)

	cmd := &cobra.Command{
		Use:   "format <disk> <partition>",
		Short: "Format a partition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/format", map[string]interface{}{
				"disk":       disk,
				"partition":  partition,
				"filesystem": filesystem,
				"label":      label,
				"quick":      !full,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}

	cmd.Flags().StringVarP(&filesystem, "filesystem", "f", "NTFS", "File system (NTFS, FAT32, exFAT, FAT)")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Volume label")
	cmd.Flags().BoolVar(&full, "full", false, "Full format instead of quick")

	return cmd
}

func partitionAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <disk> <partition> <letter>",
		Short: "Assign a drive letter to a partition",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/assign", map[string]interface{}{
				"disk":      disk,
				"partition": partition,
				"letter":    args[2],
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}
}

func partitionRemoveLetterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-letter <disk> <partition> <letter>",
		Short: "Remove a drive letter from a partition",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/remove-letter", map[string]interface{}{
				"disk":      disk,
				"partition": partition,
				"letter":    args[2],
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}
}

func partitionActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active <disk> <partition>",
		Short: "Mark a partition active for legacy BIOS boot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/active", map[string]interface{}{
				"disk":      disk,
				"partition": partition,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}
}

func partitionExtendCmd() *cobra.Command {
	var sizeMB int64

	cmd := &cobra.Command{
		Use:   "extend <disk> <partition>",
		Short: "Extend a partition into following free space",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/extend", map[string]interface{}{
				"disk":      disk,
				"partition": partition,
				"size_mb":   sizeMB,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}

	cmd.Flags().Int64VarP(&sizeMB, "size", "s", 0, "Amount to extend in MB (0 uses all free space)")

	return cmd
}

func partitionShrinkCmd() *cobra.Command {
	var (
		desiredMB int64
		minimumMB int64
	)

	cmd := &cobra.Command{
		Use:   "shrink <disk> <partition>",
		Short: "Shrink a partition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}
			partition, err := parseIntArg(args[1], "partition")
			if err != nil {
				return err
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/partition/shrink", map[string]interface{}{
				"disk":       disk,
				"partition":  partition,
				"desired_mb": desiredMB,
				"minimum_mb": minimumMB,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}

	cmd.Flags().Int64VarP(&desiredMB, "desired", "d", 0, "Desired amount to shrink in MB (0 lets the tool decide)")
	cmd.Flags().Int64VarP(&minimumMB, "minimum", "m", 0, "Minimum acceptable shrink in MB")

	return cmd
}
