package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompt asks for the four run parameters on r, writing questions to w. An
// empty answer keeps the value from def. Unparsable answers are asked again.
func Prompt(r io.Reader, w io.Writer, def Config) (Config, error) {
	c := def
	sc := bufio.NewScanner(r)

	fmt.Fprintf(w, "Current defaults:\n")
	fmt.Fprintf(w, "  Server: %s\n", def.Addr())
	fmt.Fprintf(w, "  Packet size: %d bytes\n", def.PacketSize)
	fmt.Fprintf(w, "  Interval: %g seconds\n", def.Interval.Seconds())
	fmt.Fprintf(w, "Press Enter to keep a default.\n")

	host, err := ask(sc, w, "Server host", def.Host, func(s string) error {
		if strings.ContainsAny(s, " \t") {
			return errors.New("host must not contain spaces")
		}
		return nil
	})
	if err != nil {
		return c, err
	}
	c.Host = host

	port, err := askInt(sc, w, "Server port", def.Port)
	if err != nil {
		return c, err
	}
	c.Port = port

	size, err := askInt(sc, w, "Packet size (bytes)", def.PacketSize)
	if err != nil {
		return c, err
	}
	c.PacketSize = size

	answer, err := ask(sc, w, "Interval between packets (seconds)", strconv.FormatFloat(def.Interval.Seconds(), 'g', -1, 64), func(s string) error {
		_, err := strconv.ParseFloat(s, 64)
		return err
	})
	if err != nil {
		return c, err
	}
	secs, _ := strconv.ParseFloat(answer, 64)
	c.Interval = Seconds(secs)

	return c, c.Validate()
}

func askInt(sc *bufio.Scanner, w io.Writer, label string, def int) (int, error) {
	answer, err := ask(sc, w, label, strconv.Itoa(def), func(s string) error {
		_, err := strconv.Atoi(s)
		return err
	})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}

func ask(sc *bufio.Scanner, w io.Writer, label, def string, check func(string) error) (string, error) {
	for {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		answer := strings.TrimSpace(sc.Text())
		if answer == "" {
			return def, nil
		}
		if err := check(answer); err != nil {
			fmt.Fprintf(w, "Invalid input: %v\n", err)
			continue
		}
		return answer, nil
	}
}
