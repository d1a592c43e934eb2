// Package console is the operator surface of the facility: a stdin
// input source and a menu loop driving the parking service one vehicle
// at a time.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"parklot-service/internal/service"
)

// Reader reads operator input line by line. It satisfies the parking
// service's input source contract.
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

func (r *Reader) ReadSelection() (int, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}
	selection, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("selection must be a number, got %q", line)
	}
	return selection, nil
}

func (r *Reader) ReadVehicleRegNumber() (string, error) {
	line, err := r.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", errors.New("vehicle registration number cannot be empty")
	}
	return line, nil
}

func (r *Reader) readLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(r.scanner.Text()), nil
}

const (
	actionIncoming = 1
	actionExiting  = 2
	actionQuit     = 3
)

// Shell runs the interactive menu until the operator quits or input
// ends.
type Shell struct {
	parkingService *service.ParkingService
	reader         *Reader
	out            io.Writer
	log            zerolog.Logger
}

func NewShell(parkingService *service.ParkingService, reader *Reader, out io.Writer, log zerolog.Logger) *Shell {
	return &Shell{
		parkingService: parkingService,
		reader:         reader,
		out:            out,
		log:            log,
	}
}

func (s *Shell) Run(ctx context.Context) error {
	for {
		s.printMenu()

		action, err := s.reader.ReadSelection()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "Unsupported option. Please enter a number from the menu.")
			continue
		}

		switch action {
		case actionIncoming:
			s.handleIncoming(ctx)
		case actionExiting:
			s.handleExiting(ctx)
		case actionQuit:
			fmt.Fprintln(s.out, "Exiting the parking system.")
			return nil
		default:
			fmt.Fprintln(s.out, "Unsupported option. Please enter a number from the menu.")
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "--------------------------------------")
	fmt.Fprintln(s.out, "Please select an option:")
	fmt.Fprintln(s.out, "1 - New vehicle entering, allocate a spot")
	fmt.Fprintln(s.out, "2 - Vehicle exiting, generate the fare")
	fmt.Fprintln(s.out, "3 - Shutdown the system")
}

func (s *Shell) handleIncoming(ctx context.Context) {
	fmt.Fprintln(s.out, "Please select the vehicle type (1 - CAR, 2 - BIKE),")
	fmt.Fprintln(s.out, "then type the vehicle registration number on the next line:")

	result, err := s.parkingService.ProcessIncomingVehicle(ctx, s.reader)
	if err != nil {
		s.reportError(err)
		return
	}

	if result.RecurringUser {
		fmt.Fprintln(s.out, "Welcome back! As a recurring user of our parking lot, you'll benefit from a 5% discount.")
	}
	fmt.Fprintf(s.out, "Please park in spot number %d.\n", result.Ticket.Spot.Number)
	fmt.Fprintf(s.out, "Recorded in-time for vehicle %s is %s (ticket %s).\n",
		result.Ticket.VehicleRegNumber,
		result.Ticket.InTime.Format("2006-01-02 15:04:05"),
		result.Ticket.Ref,
	)
}

func (s *Shell) handleExiting(ctx context.Context) {
	fmt.Fprintln(s.out, "Please type the vehicle registration number:")

	result, err := s.parkingService.ProcessExitingVehicle(ctx, s.reader)
	if err != nil {
		s.reportError(err)
		return
	}

	ticket := result.Ticket
	if ticket.Price == 0 {
		fmt.Fprintln(s.out, "Your stay was under 30 minutes, no fee is due.")
	} else {
		fmt.Fprintf(s.out, "Please pay the parking fare: %.2f\n", ticket.Price)
	}
	fmt.Fprintf(s.out, "Recorded out-time for vehicle %s is %s.\n",
		ticket.VehicleRegNumber,
		ticket.OutTime.Format("2006-01-02 15:04:05"),
	)
}

func (s *Shell) reportError(err error) {
	switch {
	case errors.Is(err, service.ErrNoCapacity):
		fmt.Fprintln(s.out, "Sorry, the parking lot is full for this vehicle type.")
	case errors.Is(err, service.ErrInvalidInput):
		fmt.Fprintln(s.out, "Entered input is invalid.")
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(s.out, "No open ticket was found for this vehicle.")
	default:
		s.log.Error().Err(err).Msg("vehicle flow failed")
		fmt.Fprintln(s.out, "Unable to process this vehicle, please contact support.")
	}
}
