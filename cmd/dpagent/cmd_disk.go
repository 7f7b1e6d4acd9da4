package main

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func diskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disk",
		Short: "Disk management operations",
		Long:  "Enumerate disks and volumes, query disk details, wipe disks",
	}

	cmd.AddCommand(diskListCmd())
	cmd.AddCommand(diskDetailCmd())
	cmd.AddCommand(diskVolumesCmd())
	cmd.AddCommand(diskPartitionsCmd())
	cmd.AddCommand(diskWipeCmd())

	return cmd
}

func diskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all disks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient()

			result, err := client.Operation(http.MethodGet, "/api/v1/disk/list", nil)
			if err != nil {
				return err
			}

			var disks []struct {
				ID      int    `json:"id"`
				Status  string `json:"status"`
				Size    uint64 `json:"size"`
				Free    uint64 `json:"free"`
				Dynamic bool   `json:"dynamic"`
				Style   string `json:"partition_style"`
			}
			if err := decodeResultData(result, &disks); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DISK\tSTATUS\tSIZE (GB)\tFREE (GB)\tSTYLE\tDYNAMIC")
			for _, d := range disks {
				sizeGB := float64(d.Size) / (1024 * 1024 * 1024)
				freeGB := float64(d.Free) / (1024 * 1024 * 1024)
				fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%s\t%v\n",
					d.ID, d.Status, sizeGB, freeGB, d.Style, d.Dynamic)
			}
			w.Flush()

			return nil
		},
	}
}

func diskDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <disk>",
		Short: "Show detail for one disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient()

			result, err := client.Operation(http.MethodGet, fmt.Sprintf("/api/v1/disk/detail?disk=%s", args[0]), nil)
			if err != nil {
				return err
			}

			var detail struct {
				System  bool `json:"system"`
				Boot    bool `json:"boot"`
				Dynamic bool `json:"dynamic"`
				Volumes []struct {
					ID         int    `json:"id"`
					Letter     string `json:"letter"`
					Label      string `json:"label"`
					FileSystem string `json:"filesystem"`
				} `json:"volumes"`
			}
			if err := decodeResultData(result, &detail); err != nil {
				return err
			}

			fmt.Printf("System:  %v\n", detail.System)
			fmt.Printf("Boot:    %v\n", detail.Boot)
			fmt.Printf("Dynamic: %v\n", detail.Dynamic)
			if len(detail.Volumes) > 0 {
				fmt.Println("Volumes:")
				for _, v := range detail.Volumes {
					letter := v.Letter
					if letter == "" {
						letter = "-"
					}
					fmt.Printf("  %d\t%s\t%s\t%s\n", v.ID, letter, v.Label, v.FileSystem)
				}
			}

			return nil
		},
	}
}

func diskVolumesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volumes",
		Short: "List all volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient()

			result, err := client.Operation(http.MethodGet, "/api/v1/disk/volumes", nil)
			if err != nil {
				return err
			}

			var volumes []struct {
				ID         int    `json:"id"`
				Letter     string `json:"letter"`
				Label      string `json:"label"`
				FileSystem string `json:"filesystem"`
				Type       string `json:"type"`
				Size       uint64 `json:"size"`
				Health     string `json:"health"`
			}
			if err := decodeResultData(result, &volumes); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VOLUME\tLETTER\tLABEL\tFS\tTYPE\tSIZE (GB)\tHEALTH")
			for _, v := range volumes {
				letter := v.Letter
				if letter == "" {
					letter = "-"
				}
				sizeGB := float64(v.Size) / (1024 * 1024 * 1024)
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
					v.ID, letter, v.Label, v.FileSystem, v.Type, sizeGB, v.Health)
			}
			w.Flush()

			return nil
		},
	}
}

func diskPartitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partitions <disk>",
		Short: "List partitions of a disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient()

			result, err := client.Operation(http.MethodGet, fmt.Sprintf("/api/v1/disk/partitions?disk=%s", args[0]), nil)
			if err != nil {
				return err
			}

			var partitions []struct {
				ID     int    `json:"id"`
				Type   string `json:"type"`
				Size   uint64 `json:"size"`
				Offset uint64 `json:"offset"`
			}
			if err := decodeResultData(result, &partitions); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PARTITION\tTYPE\tSIZE (GB)\tOFFSET (GB)")
			for _, p := range partitions {
				sizeGB := float64(p.Size) / (1024 * 1024 * 1024)
				offsetGB := float64(p.Offset) / (1024 * 1024 * 1024)
				fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\n", p.ID, p.Type, sizeGB, offsetGB)
			}
			w.Flush()

			return nil
		},
	}
}

func diskWipeCmd() *cobra.Command {
	var (
		secure bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "wipe <disk>",
		Short: "Wipe a disk, destroying all partitions and data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := parseIntArg(args[0], "disk")
			if err != nil {
				return err
			}

			if !yes {
				fmt.Printf("This will destroy ALL data on disk %d. Continue? [y/N] ", disk)
				var answer string
				fmt.Scanln(&answer)
				if answer != "y" && answer != "Y" {
					fmt.Println("Aborted")
					return nil
				}
			}

			client := getAPIClient()
			result, err := client.Operation(http.MethodPost, "/api/v1/disk/wipe", map[string]interface{}{
				"disk":   disk,
				"secure": secure,
			})
			if err != nil {
				return err
			}

			return printResult(result)
		},
	}

	cmd.Flags().BoolVar(&secure, "secure", false, "Zero every sector instead of only the partition tables")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
